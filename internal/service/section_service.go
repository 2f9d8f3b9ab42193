package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

type sectionsAPI interface {
	Sections(ctx context.Context, token string) (json.RawMessage, error)
}

// SectionService loads the section catalog, searches it and maintains the cart.
type SectionService struct {
	api       sectionsAPI
	validator *validator.Validate
	logger    *zap.Logger
	search    SearchOptions
}

// NewSectionService constructs a SectionService.
func NewSectionService(api sectionsAPI, validate *validator.Validate, logger *zap.Logger, search SearchOptions) *SectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SectionService{api: api, validator: validate, logger: logger, search: search.withDefaults()}
}

// Refresh fetches the section list and replaces the workspace catalog.
func (s *SectionService) Refresh(ctx context.Context, ws *Workspace) ([]models.SectionRecord, error) {
	raw, err := s.api.Sections(ctx, ws.Session().Token)
	if err != nil {
		return nil, transportFailure(err, "failed to fetch sections")
	}
	catalog, err := BuildSectionCatalog(raw)
	if err != nil {
		return nil, err
	}
	ws.SetSections(catalog)
	s.logger.Debug("section catalog loaded", zap.Int("sections", len(catalog)))
	return catalog, nil
}

func (s *SectionService) catalog(ctx context.Context, ws *Workspace) ([]models.SectionRecord, error) {
	if sections := ws.Sections(); sections != nil {
		return sections, nil
	}
	return s.Refresh(ctx, ws)
}

// Search runs a grouped search, loading the catalog first when needed.
func (s *SectionService) Search(ctx context.Context, ws *Workspace, query string) (*models.SectionSearchResult, error) {
	if _, err := SearchSections(nil, query, nil, s.search); err != nil {
		return nil, err
	}
	catalog, err := s.catalog(ctx, ws)
	if err != nil {
		return nil, err
	}
	return SearchSections(catalog, query, ws.InCart, s.search)
}

// AddToCart selects a section of the loaded catalog. Adding a selected
// section again is a no-op and returns the existing cart.
func (s *SectionService) AddToCart(ctx context.Context, ws *Workspace, req models.CartAddRequest) ([]models.CartEntry, error) {
	req.SectionID = strings.TrimSpace(req.SectionID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "section_id is required")
	}

	catalog, err := s.catalog(ctx, ws)
	if err != nil {
		return nil, err
	}
	section, ok := FindSection(catalog, req.SectionID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found in the loaded catalog")
	}

	entry := section.CartEntry()
	if label := strings.TrimSpace(req.Label); label != "" {
		entry.Label = label
	}
	if ws.AddToCart(entry) {
		s.logger.Debug("section added to cart", zap.String("section_id", entry.SectionID))
	}
	return ws.CartEntries(), nil
}

// RemoveFromCart drops a selection.
func (s *SectionService) RemoveFromCart(ws *Workspace, sectionID string) ([]models.CartEntry, error) {
	if !ws.RemoveFromCart(sectionID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section is not in the cart")
	}
	return ws.CartEntries(), nil
}

// Cart lists the pending selections.
func (s *SectionService) Cart(ws *Workspace) []models.CartEntry {
	return ws.CartEntries()
}
