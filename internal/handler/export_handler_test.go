package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qldt-dashboard/internal/service"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

type fakeExportService struct {
	format service.ExportFormat
	err    error
}

func (f *fakeExportService) ExportCourses(_ *service.Workspace, format service.ExportFormat) (*service.ExportFile, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: "danh_sach_mon_hoc_20250812_090507." + string(format), ContentType: "application/pdf", Payload: []byte("%PDF-1.3")}, nil
}

func TestExportHandlerDownload(t *testing.T) {
	svc := &fakeExportService{}
	engine := newTestEngine()
	engine.GET("/exports/courses", NewExportHandler(svc, newResolver()).Courses)

	rec := perform(engine, http.MethodGet, "/exports/courses?format=pdf", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatPDF, svc.format)
	assert.Equal(t, `attachment; filename="danh_sach_mon_hoc_20250812_090507.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestExportHandlerDefaultsToCSV(t *testing.T) {
	svc := &fakeExportService{}
	engine := newTestEngine()
	engine.GET("/exports/courses", NewExportHandler(svc, newResolver()).Courses)

	perform(engine, http.MethodGet, "/exports/courses", nil)

	assert.Equal(t, service.ExportFormatCSV, svc.format)
}

func TestExportHandlerRejectsUnknownFormat(t *testing.T) {
	svc := &fakeExportService{}
	engine := newTestEngine()
	engine.GET("/exports/courses", NewExportHandler(svc, newResolver()).Courses)

	rec := perform(engine, http.MethodGet, "/exports/courses?format=xlsx", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.format)
}

func TestExportHandlerNothingFetched(t *testing.T) {
	engine := newTestEngine()
	engine.GET("/exports/courses", NewExportHandler(&fakeExportService{err: appErrors.ErrNotFound}, newResolver()).Courses)

	rec := perform(engine, http.MethodGet, "/exports/courses?format=json", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
