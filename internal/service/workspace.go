package service

import (
	"sync"
	"time"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

// Workspace is the state bound to one signed-in session: the session itself,
// the selection cart, the last course fetch and the loaded section catalog.
type Workspace struct {
	session *models.Session

	mu        sync.Mutex
	cart      models.Cart
	courses   *models.CourseResult
	fetchedAt time.Time
	sections  []models.SectionRecord

	submitting bool
}

// NewWorkspace wraps a fresh session.
func NewWorkspace(session *models.Session) *Workspace {
	return &Workspace{session: session}
}

// Session returns the session. It is immutable once created.
func (w *Workspace) Session() *models.Session {
	return w.session
}

// Courses returns the last course fetch and when it happened.
func (w *Workspace) Courses() (*models.CourseResult, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.courses, w.fetchedAt
}

// SetCourses replaces the course result.
func (w *Workspace) SetCourses(result *models.CourseResult, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.courses = result
	w.fetchedAt = at
}

// Sections returns the loaded catalog, nil when it was never loaded.
func (w *Workspace) Sections() []models.SectionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sections
}

// SetSections replaces the catalog.
func (w *Workspace) SetSections(sections []models.SectionRecord) {
	if sections == nil {
		sections = []models.SectionRecord{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sections = sections
}

// CartEntries returns a snapshot of the cart.
func (w *Workspace) CartEntries() []models.CartEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.Entries()
}

// InCart reports whether sectionID is selected.
func (w *Workspace) InCart(sectionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.Contains(sectionID)
}

// AddToCart selects entry; false means it was already selected.
func (w *Workspace) AddToCart(entry models.CartEntry) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.Add(entry)
}

// RemoveFromCart drops sectionID from the cart.
func (w *Workspace) RemoveFromCart(sectionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.Remove(sectionID)
}

// BeginSubmit claims the cart for one submission. It returns false while
// another submission holds it.
func (w *Workspace) BeginSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return false
	}
	w.submitting = true
	return true
}

// EndSubmit releases the claim taken by BeginSubmit.
func (w *Workspace) EndSubmit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
}

// SettleCart applies a submission outcome: submitted entries are replaced by
// the ones that failed, and selections made during the submission stay
// behind them.
func (w *Workspace) SettleCart(submitted, failed []models.CartEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sent := make(map[string]struct{}, len(submitted))
	for _, entry := range submitted {
		sent[entry.SectionID] = struct{}{}
	}
	next := append([]models.CartEntry{}, failed...)
	for _, entry := range w.cart.Entries() {
		if _, ok := sent[entry.SectionID]; !ok {
			next = append(next, entry)
		}
	}
	w.cart.Replace(next)
}

// WorkspaceStore holds the single active workspace. A new login replaces it.
type WorkspaceStore struct {
	mu      sync.Mutex
	current *Workspace
}

// NewWorkspaceStore builds an empty store.
func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{}
}

// Put installs ws and returns the workspace it displaced, if any.
func (s *WorkspaceStore) Put(ws *Workspace) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.current
	s.current = ws
	return previous
}

// Get returns the workspace of sessionID.
func (s *WorkspaceStore) Get(sessionID string) (*Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || sessionID == "" || s.current.session.ID != sessionID {
		return nil, appErrors.ErrSessionNotFound
	}
	return s.current, nil
}

// Delete removes the workspace of sessionID.
func (s *WorkspaceStore) Delete(sessionID string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.session.ID != sessionID {
		return nil, false
	}
	ws := s.current
	s.current = nil
	return ws, true
}
