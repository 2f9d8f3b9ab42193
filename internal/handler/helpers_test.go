package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qldt-dashboard/internal/middleware"
	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/internal/service"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type fakeResolver struct {
	ws *service.Workspace
}

func (f *fakeResolver) Workspace(sessionID string) (*service.Workspace, error) {
	if f.ws == nil || f.ws.Session().ID != sessionID {
		return nil, appErrors.ErrSessionNotFound
	}
	return f.ws, nil
}

func newResolver() *fakeResolver {
	return &fakeResolver{ws: service.NewWorkspace(&models.Session{ID: "s1", Token: "up"})}
}

// newTestEngine returns an engine whose requests carry claims for session s1
// unless the request sets X-Anonymous.
func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	_, engine := gin.CreateTestContext(httptest.NewRecorder())
	engine.Use(func(c *gin.Context) {
		if c.GetHeader("X-Anonymous") == "" {
			c.Set(middleware.ContextUserKey, &models.DashboardClaims{SessionID: "s1", Username: "sv01"})
		}
		c.Next()
	})
	return engine
}

func perform(engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope
}

func anonymous(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Anonymous", "1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}
