package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

type fakeValidator struct {
	tokens map[string]*models.DashboardClaims
	seen   []string
}

func (f *fakeValidator) ValidateToken(token string) (*models.DashboardClaims, error) {
	f.seen = append(f.seen, token)
	if claims, ok := f.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrSessionNotFound
}

func jwtEngine(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", JWT(v), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.DashboardClaims)
		c.String(http.StatusOK, claims.SessionID)
	})
	return r
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	v := &fakeValidator{tokens: map[string]*models.DashboardClaims{"good": {SessionID: "s1"}}}
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := httptest.NewRecorder()

	jwtEngine(v).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", rec.Body.String())
}

func TestJWTRejects(t *testing.T) {
	v := &fakeValidator{tokens: map[string]*models.DashboardClaims{}}
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"empty token":    "Bearer  ",
		"unknown token":  "Bearer stale",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()

			jwtEngine(v).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.Equal(t, []string{"stale"}, v.seen)
}
