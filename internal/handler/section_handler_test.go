package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/internal/service"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

type fakeSectionService struct {
	catalog   []models.SectionRecord
	query     string
	added     []models.CartAddRequest
	cart      []models.CartEntry
	searchErr error
}

func (f *fakeSectionService) Refresh(context.Context, *service.Workspace) ([]models.SectionRecord, error) {
	return f.catalog, nil
}

func (f *fakeSectionService) Search(_ context.Context, _ *service.Workspace, query string) (*models.SectionSearchResult, error) {
	f.query = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &models.SectionSearchResult{Query: query, TotalHits: 1}, nil
}

func (f *fakeSectionService) AddToCart(_ context.Context, _ *service.Workspace, req models.CartAddRequest) ([]models.CartEntry, error) {
	f.added = append(f.added, req)
	f.cart = append(f.cart, models.CartEntry{SectionID: req.SectionID, Label: req.Label})
	return f.cart, nil
}

func (f *fakeSectionService) RemoveFromCart(_ *service.Workspace, sectionID string) ([]models.CartEntry, error) {
	for i, entry := range f.cart {
		if entry.SectionID == sectionID {
			f.cart = append(f.cart[:i], f.cart[i+1:]...)
			return f.cart, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (f *fakeSectionService) Cart(*service.Workspace) []models.CartEntry {
	return f.cart
}

type fakeRegistrationService struct {
	report *models.RegistrationReport
	err    error
}

func (f *fakeRegistrationService) Submit(context.Context, *service.Workspace) (*models.RegistrationReport, error) {
	return f.report, f.err
}

func sectionEngine(sections *fakeSectionService, registration *fakeRegistrationService) *gin.Engine {
	engine := newTestEngine()
	h := NewSectionHandler(sections, registration, newResolver())
	engine.POST("/sections/refresh", h.Refresh)
	engine.GET("/sections/search", h.Search)
	engine.GET("/cart", h.Cart)
	engine.POST("/cart", h.AddToCart)
	engine.DELETE("/cart/:sectionId", h.RemoveFromCart)
	engine.POST("/cart/submit", h.Submit)
	return engine
}

func TestSectionHandlerRefresh(t *testing.T) {
	engine := sectionEngine(&fakeSectionService{catalog: make([]models.SectionRecord, 3)}, nil)

	rec := perform(engine, http.MethodPost, "/sections/refresh", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_sections":3}`, string(decodeEnvelope(t, rec).Data))
}

func TestSectionHandlerSearch(t *testing.T) {
	svc := &fakeSectionService{}
	engine := sectionEngine(svc, nil)

	rec := perform(engine, http.MethodGet, "/sections/search?q=tri%E1%BA%BFt", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "triết", svc.query)
}

func TestSectionHandlerSearchValidation(t *testing.T) {
	engine := sectionEngine(&fakeSectionService{searchErr: appErrors.Clone(appErrors.ErrValidation, "too short")}, nil)

	rec := perform(engine, http.MethodGet, "/sections/search?q=ab", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSectionHandlerCartLifecycle(t *testing.T) {
	svc := &fakeSectionService{}
	engine := sectionEngine(svc, nil)

	rec := perform(engine, http.MethodPost, "/cart", map[string]string{"section_id": "101"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeEnvelope(t, rec).Meta["count"])
	assert.Equal(t, "101", svc.added[0].SectionID)

	rec = perform(engine, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"section_id":"101"`)

	rec = perform(engine, http.MethodDelete, "/cart/101", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeEnvelope(t, rec).Meta["count"])

	rec = perform(engine, http.MethodDelete, "/cart/101", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectionHandlerAddToCartBadPayload(t *testing.T) {
	svc := &fakeSectionService{}

	rec := perform(sectionEngine(svc, nil), http.MethodPost, "/cart", "not an object")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.added)
}

func TestSectionHandlerSubmit(t *testing.T) {
	report := &models.RegistrationReport{
		Events:       []models.RegistrationEvent{{SectionID: "101", Success: true}, {SectionID: "102", Message: "Trùng lịch"}},
		SuccessCount: 1,
		FailureCount: 1,
		Remaining:    []models.CartEntry{{SectionID: "102"}},
	}
	engine := sectionEngine(&fakeSectionService{}, &fakeRegistrationService{report: report})

	rec := perform(engine, http.MethodPost, "/cart/submit", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := string(decodeEnvelope(t, rec).Data)
	assert.Contains(t, data, `"success_count":1`)
	assert.Contains(t, data, `"message":"Trùng lịch"`)
}

func TestSectionHandlerSubmitEmptyCart(t *testing.T) {
	engine := sectionEngine(&fakeSectionService{}, &fakeRegistrationService{err: appErrors.Clone(appErrors.ErrValidation, "cart is empty")})

	rec := perform(engine, http.MethodPost, "/cart/submit", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSectionHandlerSubmitAlreadyRunning(t *testing.T) {
	engine := sectionEngine(&fakeSectionService{}, &fakeRegistrationService{err: appErrors.Clone(appErrors.ErrConflict, "a cart submission is already running")})

	rec := perform(engine, http.MethodPost, "/cart/submit", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFLICT")
}
