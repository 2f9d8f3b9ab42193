package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qldt-dashboard/internal/service"
	"github.com/noah-isme/qldt-dashboard/pkg/response"
)

type exportService interface {
	ExportCourses(ws *service.Workspace, format service.ExportFormat) (*service.ExportFile, error)
}

// ExportHandler serves course downloads.
type ExportHandler struct {
	service    exportService
	workspaces workspaceResolver
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService, workspaces workspaceResolver) *ExportHandler {
	return &ExportHandler{service: svc, workspaces: workspaces}
}

// Courses godoc
// @Summary Download registered courses
// @Tags Exports
// @Security BearerAuth
// @Produce text/csv
// @Produce application/json
// @Produce application/pdf
// @Param format query string false "csv (default), json or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/courses [get]
func (h *ExportHandler) Courses(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	ws, ok := currentWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	file, err := h.service.ExportCourses(ws, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
