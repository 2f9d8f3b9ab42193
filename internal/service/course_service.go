package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

type coursesAPI interface {
	RegisteredCourses(ctx context.Context, token string) (json.RawMessage, error)
}

// CourseService fetches registered courses and keeps the normalized result in the workspace.
type CourseService struct {
	api    coursesAPI
	logger *zap.Logger
	now    func() time.Time
}

// NewCourseService constructs a CourseService.
func NewCourseService(api coursesAPI, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{api: api, logger: logger, now: time.Now}
}

// Refresh fetches the registered courses and replaces the stored result. A
// body that is not JSON is not an error: the result carries it instead.
func (s *CourseService) Refresh(ctx context.Context, ws *Workspace) (*models.CourseResult, error) {
	raw, err := s.api.RegisteredCourses(ctx, ws.Session().Token)
	if err != nil {
		return nil, transportFailure(err, "failed to fetch registered courses")
	}

	result := NormalizeRegisteredCourses(raw)
	if result.Error != "" {
		s.logger.Warn("registered courses payload is not JSON", zap.String("session_id", ws.Session().ID))
	}
	ws.SetCourses(result, s.now())

	s.logger.Debug("registered courses refreshed",
		zap.Int("courses", result.TotalCourses),
		zap.Int("credits", result.TotalCredits),
	)
	return result, nil
}

// Current returns the last fetched result.
func (s *CourseService) Current(ws *Workspace) (*models.CourseResult, time.Time, error) {
	result, fetchedAt := ws.Courses()
	if result == nil {
		return nil, time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "registered courses have not been fetched")
	}
	return result, fetchedAt, nil
}
