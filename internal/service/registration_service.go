package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

// UnknownRegistrationError is reported when a rejection carries no message.
const UnknownRegistrationError = "Không rõ lỗi"

type registrationAPI interface {
	RegisterSection(ctx context.Context, token string, entry models.CartEntry) (json.RawMessage, error)
}

// RegistrationRecorder counts registration outcomes.
type RegistrationRecorder interface {
	ObserveRegistration(success bool)
}

// RegistrationService submits the cart one section at a time.
type RegistrationService struct {
	api      registrationAPI
	recorder RegistrationRecorder
	logger   *zap.Logger
}

// NewRegistrationService constructs a RegistrationService. recorder may be nil.
func NewRegistrationService(api registrationAPI, recorder RegistrationRecorder, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{api: api, recorder: recorder, logger: logger}
}

// RegisterAll registers entries sequentially in order. Accepted entries are
// dropped; rejected ones and transport failures stay in Remaining, in order.
func (s *RegistrationService) RegisterAll(ctx context.Context, token string, entries []models.CartEntry) *models.RegistrationReport {
	report := &models.RegistrationReport{
		Events:    make([]models.RegistrationEvent, 0, len(entries)),
		Remaining: []models.CartEntry{},
	}

	for _, entry := range entries {
		event := s.register(ctx, token, entry)
		report.Events = append(report.Events, event)
		if event.Success {
			report.SuccessCount++
		} else {
			report.FailureCount++
			report.Remaining = append(report.Remaining, entry)
		}
		if s.recorder != nil {
			s.recorder.ObserveRegistration(event.Success)
		}
	}
	return report
}

func (s *RegistrationService) register(ctx context.Context, token string, entry models.CartEntry) models.RegistrationEvent {
	event := models.RegistrationEvent{SectionID: entry.SectionID, Label: entry.Label}

	raw, err := s.api.RegisterSection(ctx, token, entry)
	if err != nil {
		event.Message = err.Error()
		s.logger.Warn("registration request failed", zap.String("section_id", entry.SectionID), zap.Error(err))
		return event
	}

	payload, _, text, ok := unwrapTextPayload(raw)
	if !ok {
		event.Message = MalformedPayloadMessage
		s.logger.Warn("registration reply is not JSON", zap.String("section_id", entry.SectionID), zap.String("body", text))
		return event
	}

	root, _ := object(payload)
	data, _ := objectField(root, "data")
	if data != nil && truthy(data["is_thanh_cong"]) {
		event.Success = true
		s.logger.Info("section registered", zap.String("section_id", entry.SectionID))
		return event
	}

	event.Message = stringField(data, "thong_bao_loi")
	if event.Message == "" {
		event.Message = UnknownRegistrationError
	}
	s.logger.Info("registration rejected",
		zap.String("section_id", entry.SectionID),
		zap.String("code", appErrors.ErrRegistrationFailed.Code),
		zap.String("reason", event.Message),
	)
	return event
}

// Submit registers the workspace cart and keeps only the failed entries.
// Sections selected while the submission runs stay in the cart. Only one
// submission per workspace runs at a time; an overlapping call gets ErrConflict.
func (s *RegistrationService) Submit(ctx context.Context, ws *Workspace) (*models.RegistrationReport, error) {
	if !ws.BeginSubmit() {
		s.logger.Warn("cart submission already running", zap.String("session_id", ws.Session().ID))
		return nil, appErrors.Clone(appErrors.ErrConflict, "a cart submission is already running")
	}
	defer ws.EndSubmit()

	entries := ws.CartEntries()
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cart is empty")
	}

	report := s.RegisterAll(ctx, ws.Session().Token, entries)
	ws.SettleCart(entries, report.Remaining)
	report.Remaining = ws.CartEntries()

	s.logger.Info("cart submitted",
		zap.String("session_id", ws.Session().ID),
		zap.Int("succeeded", report.SuccessCount),
		zap.Int("failed", report.FailureCount),
	)
	return report, nil
}
