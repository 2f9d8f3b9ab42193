package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
	"github.com/noah-isme/qldt-dashboard/pkg/export"
)

// ExportFormat names a download format.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
	ExportFormatPDF  ExportFormat = "pdf"
)

const exportTimestampLayout = "20060102_150405"

var exportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatJSON: "application/json; charset=utf-8",
	ExportFormatPDF:  "application/pdf",
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	FilenamePrefix string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type jsonRenderer interface {
	Render(v interface{}) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders the last fetched course result for download.
type ExportService struct {
	csv    csvRenderer
	json   jsonRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	cfg    ExportConfig
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get the defaults.
func NewExportService(cfg ExportConfig, logger *zap.Logger, csv csvRenderer, json jsonRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FilenamePrefix == "" {
		cfg.FilenamePrefix = "danh_sach_mon_hoc"
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if json == nil {
		json = export.NewJSONExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, json: json, pdf: pdf, logger: logger, cfg: cfg, now: time.Now}
}

// ParseExportFormat accepts csv, json and pdf in any case; empty means csv.
func ParseExportFormat(raw string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format == "" {
		return ExportFormatCSV, nil
	}
	if _, ok := exportContentTypes[format]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
	return format, nil
}

// ExportCourses renders the workspace's course result.
func (s *ExportService) ExportCourses(ws *Workspace, format ExportFormat) (*ExportFile, error) {
	result, _ := ws.Courses()
	if result == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registered courses have not been fetched")
	}

	var (
		payload []byte
		err     error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(courseDataset(result))
	case ExportFormatJSON:
		payload, err = s.json.Render(result)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(courseDataset(result), fmt.Sprintf("Danh sách môn học (%d môn, %d tín chỉ)", result.TotalCourses, result.TotalCredits))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	file := &ExportFile{
		Filename:    s.filename(format),
		ContentType: exportContentTypes[format],
		Payload:     payload,
	}
	s.logger.Info("courses exported", zap.String("format", string(format)), zap.Int("bytes", len(payload)))
	return file, nil
}

func (s *ExportService) filename(format ExportFormat) string {
	return fmt.Sprintf("%s_%s.%s", s.cfg.FilenamePrefix, s.now().Format(exportTimestampLayout), format)
}

func courseDataset(result *models.CourseResult) export.Dataset {
	rows := make([]map[string]string, 0, len(result.Courses))
	for _, course := range result.Courses {
		rows = append(rows, course.Columns())
	}
	return export.Dataset{Headers: models.CourseRecordColumns, Rows: rows}
}
