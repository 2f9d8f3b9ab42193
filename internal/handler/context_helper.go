package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qldt-dashboard/internal/middleware"
	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/internal/service"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
	"github.com/noah-isme/qldt-dashboard/pkg/response"
)

type workspaceResolver interface {
	Workspace(sessionID string) (*service.Workspace, error)
}

func claimsFromContext(c *gin.Context) *models.DashboardClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.DashboardClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentWorkspace resolves the caller's workspace and writes the error response when it cannot.
func currentWorkspace(c *gin.Context, resolver workspaceResolver) (*service.Workspace, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	ws, err := resolver.Workspace(claims.SessionID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return ws, true
}
