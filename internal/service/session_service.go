package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/internal/upstream"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

// LogtimeLayout is the upstream login timestamp format (yyMMddHHmmss, local time).
const LogtimeLayout = "060102150405"

type sessionAPI interface {
	Login(ctx context.Context, username, password string) (json.RawMessage, error)
	Logout(ctx context.Context, token string) error
}

// SessionConfig configures the tokens handed to dashboard clients.
type SessionConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// SessionService signs students in upstream and tracks the resulting session.
type SessionService struct {
	api       sessionAPI
	store     *WorkspaceStore
	validator *validator.Validate
	logger    *zap.Logger
	config    SessionConfig
	now       func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(api sessionAPI, store *WorkspaceStore, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if store == nil {
		store = NewWorkspaceStore()
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 12 * time.Hour
	}
	return &SessionService{api: api, store: store, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login authenticates upstream, replaces the active workspace and issues a
// dashboard token bound to the new session.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}

	raw, err := s.api.Login(ctx, req.Username, req.Password)
	if err != nil {
		var transportErr *upstream.TransportError
		if errors.As(err, &transportErr) && transportErr.Rejected() {
			return nil, appErrors.Wrap(err, appErrors.ErrAuth.Code, appErrors.ErrAuth.Status, "invalid username or password")
		}
		return nil, transportFailure(err, "login request failed")
	}

	now := s.now()
	session, err := NewSession(raw, now)
	if err != nil {
		return nil, err
	}
	session.ID = uuid.NewString()
	if session.User.Username == "" {
		session.User.Username = req.Username
	}

	if previous := s.store.Put(NewWorkspace(session)); previous != nil {
		s.logger.Info("replaced previous session", zap.String("session_id", previous.Session().ID))
	}

	token, expiresAt, err := s.issueToken(session, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue dashboard token")
	}

	s.logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.String("username", session.User.Username),
		zap.Time("expires_at", session.ExpiresAt),
	)

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   session.StatusAt(now),
	}, nil
}

// Logout signs out upstream on a best-effort basis and always drops the
// local workspace. Upstream failures are logged, never returned.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	ws, ok := s.store.Delete(sessionID)
	if !ok {
		return appErrors.ErrSessionNotFound
	}
	if err := s.api.Logout(ctx, ws.Session().Token); err != nil {
		s.logger.Warn("upstream logout failed, token presumed invalid", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

// Workspace returns the workspace of sessionID.
func (s *SessionService) Workspace(sessionID string) (*Workspace, error) {
	return s.store.Get(sessionID)
}

// Status reports the session countdown. Expiry is advisory only.
func (s *SessionService) Status(sessionID string) (models.SessionStatus, error) {
	ws, err := s.store.Get(sessionID)
	if err != nil {
		return models.SessionStatus{}, err
	}
	return ws.Session().StatusAt(s.now()), nil
}

// ValidateToken parses a dashboard token and checks it still names the active session.
func (s *SessionService) ValidateToken(tokenString string) (*models.DashboardClaims, error) {
	claims := &models.DashboardClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.TokenSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if _, err := s.store.Get(claims.SessionID); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *SessionService) issueToken(session *models.Session, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.config.TokenTTL)
	claims := models.DashboardClaims{
		SessionID: session.ID,
		Username:  session.User.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   session.User.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// NewSession builds a session from a login response. It fails with AUTH_ERROR
// when access_token or a non-negative expires_in is missing. The issue time is
// the upstream logtime when it parses, otherwise now.
func NewSession(raw []byte, now time.Time) (*models.Session, error) {
	payload, _, _, ok := unwrapTextPayload(raw)
	body, isObject := object(payload)
	if !ok || !isObject {
		return nil, appErrors.Clone(appErrors.ErrAuth, "login response is not a JSON object")
	}

	token, _ := body["access_token"].(string)
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrAuth, "login response has no access_token")
	}
	expiresIn, ok := intValue(body["expires_in"])
	if !ok || expiresIn < 0 {
		return nil, appErrors.Clone(appErrors.ErrAuth, fmt.Sprintf("login response has invalid expires_in %v", body["expires_in"]))
	}

	issuedAt := now
	if logtime := stringField(body, "logtime"); logtime != "" {
		if parsed, err := time.ParseInLocation(LogtimeLayout, logtime, time.Local); err == nil {
			issuedAt = parsed
		}
	}

	attributes := make(map[string]interface{}, len(body))
	for key, value := range body {
		switch key {
		case "access_token", "refresh_token":
			continue
		}
		attributes[key] = value
	}

	return &models.Session{
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(time.Duration(expiresIn) * time.Second),
		User: models.UserInfo{
			Username:   stringField(body, "username"),
			Name:       stringField(body, "name"),
			StudentID:  stringField(body, "student_id"),
			Attributes: attributes,
		},
	}, nil
}
