package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/internal/service"
	"github.com/noah-isme/qldt-dashboard/pkg/response"
)

type courseService interface {
	Refresh(ctx context.Context, ws *service.Workspace) (*models.CourseResult, error)
	Current(ws *service.Workspace) (*models.CourseResult, time.Time, error)
}

// CourseHandler serves registered courses.
type CourseHandler struct {
	service    courseService
	workspaces workspaceResolver
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc courseService, workspaces workspaceResolver) *CourseHandler {
	return &CourseHandler{service: svc, workspaces: workspaces}
}

// Refresh godoc
// @Summary Fetch registered courses
// @Description Fetches and normalizes the registered courses, replacing the stored result
// @Tags Courses
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /courses/refresh [post]
func (h *CourseHandler) Refresh(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	result, err := h.service.Refresh(c.Request.Context(), ws)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.WithoutRaw(), nil)
}

// List godoc
// @Summary Registered courses
// @Description Returns the last fetched course result without the raw payload
// @Tags Courses
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	result, fetchedAt, err := h.service.Current(ws)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.WithoutRaw(), map[string]interface{}{"fetched_at": fetchedAt})
}

// Raw godoc
// @Summary Raw course payload
// @Description Returns the upstream payload of the last fetch for diagnostics
// @Tags Courses
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/raw [get]
func (h *CourseHandler) Raw(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	result, fetchedAt, err := h.service.Current(ws)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.RawData, map[string]interface{}{"fetched_at": fetchedAt, "error": result.Error})
}
