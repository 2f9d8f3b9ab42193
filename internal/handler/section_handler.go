package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/internal/service"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
	"github.com/noah-isme/qldt-dashboard/pkg/response"
)

type sectionService interface {
	Refresh(ctx context.Context, ws *service.Workspace) ([]models.SectionRecord, error)
	Search(ctx context.Context, ws *service.Workspace, query string) (*models.SectionSearchResult, error)
	AddToCart(ctx context.Context, ws *service.Workspace, req models.CartAddRequest) ([]models.CartEntry, error)
	RemoveFromCart(ws *service.Workspace, sectionID string) ([]models.CartEntry, error)
	Cart(ws *service.Workspace) []models.CartEntry
}

type registrationService interface {
	Submit(ctx context.Context, ws *service.Workspace) (*models.RegistrationReport, error)
}

// SectionHandler serves the section catalog and the registration cart.
type SectionHandler struct {
	sections     sectionService
	registration registrationService
	workspaces   workspaceResolver
}

// NewSectionHandler constructs the handler.
func NewSectionHandler(sections sectionService, registration registrationService, workspaces workspaceResolver) *SectionHandler {
	return &SectionHandler{sections: sections, registration: registration, workspaces: workspaces}
}

// Refresh godoc
// @Summary Load section catalog
// @Tags Sections
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sections/refresh [post]
func (h *SectionHandler) Refresh(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	catalog, err := h.sections.Refresh(c.Request.Context(), ws)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"total_sections": len(catalog)}, nil)
}

// Search godoc
// @Summary Search sections
// @Description Case-insensitive search over course code, name and group, grouped by course
// @Tags Sections
// @Security BearerAuth
// @Produce json
// @Param q query string true "Search text, at least 3 characters"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sections/search [get]
func (h *SectionHandler) Search(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	result, err := h.sections.Search(c.Request.Context(), ws, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Cart godoc
// @Summary List cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cart [get]
func (h *SectionHandler) Cart(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	respondCart(c, h.sections.Cart(ws))
}

// AddToCart godoc
// @Summary Add a section to the cart
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body models.CartAddRequest true "Section selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cart [post]
func (h *SectionHandler) AddToCart(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	var req models.CartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cart payload"))
		return
	}
	cart, err := h.sections.AddToCart(c.Request.Context(), ws, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCart(c, cart)
}

// RemoveFromCart godoc
// @Summary Remove a section from the cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param sectionId path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cart/{sectionId} [delete]
func (h *SectionHandler) RemoveFromCart(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	cart, err := h.sections.RemoveFromCart(ws, c.Param("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCart(c, cart)
}

// Submit godoc
// @Summary Register every section in the cart
// @Description Sections are registered one at a time; failed ones stay in the cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cart/submit [post]
func (h *SectionHandler) Submit(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	report, err := h.registration.Submit(c.Request.Context(), ws)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

func respondCart(c *gin.Context, cart []models.CartEntry) {
	response.JSON(c, http.StatusOK, cart, map[string]interface{}{"count": len(cart)})
}
