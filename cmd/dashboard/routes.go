package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/qldt-dashboard/internal/handler"
	"github.com/noah-isme/qldt-dashboard/internal/middleware"
	"github.com/noah-isme/qldt-dashboard/internal/service"
	"github.com/noah-isme/qldt-dashboard/internal/upstream"
	"github.com/noah-isme/qldt-dashboard/pkg/config"
	"github.com/noah-isme/qldt-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/qldt-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/qldt-dashboard/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger) (*gin.Engine, error) {
	var metricsSvc *service.MetricsService
	var observer upstream.Observer
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
		observer = metricsSvc
	}

	client, err := upstream.NewClient(cfg.Upstream, logr, observer)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	store := service.NewWorkspaceStore()
	sessionSvc := service.NewSessionService(client, store, validate, logr.Named("session"), service.SessionConfig{
		TokenSecret: cfg.Dashboard.TokenSecret,
		TokenTTL:    cfg.Dashboard.TokenTTL,
		Issuer:      cfg.Dashboard.Issuer,
	})
	courseSvc := service.NewCourseService(client, logr.Named("courses"))
	sectionSvc := service.NewSectionService(client, validate, logr.Named("sections"), service.SearchOptions{
		MinQueryLength: cfg.Search.MinQueryLength,
		MaxGroups:      cfg.Search.MaxGroups,
	})
	var recorder service.RegistrationRecorder
	if metricsSvc != nil {
		recorder = metricsSvc
	}
	registrationSvc := service.NewRegistrationService(client, recorder, logr.Named("registration"))
	exportSvc := service.NewExportService(service.ExportConfig{FilenamePrefix: cfg.Export.FilenamePrefix}, logr.Named("export"), nil, nil, nil)

	authHandler := handler.NewAuthHandler(sessionSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, sessionSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc, registrationSvc, sessionSvc)
	exportHandler := handler.NewExportHandler(exportSvc, sessionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(sessionSvc))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/session", authHandler.Session)

	secured.POST("/courses/refresh", courseHandler.Refresh)
	secured.GET("/courses", courseHandler.List)
	secured.GET("/courses/raw", courseHandler.Raw)

	secured.POST("/sections/refresh", sectionHandler.Refresh)
	secured.GET("/sections/search", sectionHandler.Search)

	secured.GET("/cart", sectionHandler.Cart)
	secured.POST("/cart", sectionHandler.AddToCart)
	secured.DELETE("/cart/:sectionId", sectionHandler.RemoveFromCart)
	secured.POST("/cart/submit", sectionHandler.Submit)

	secured.GET("/exports/courses", exportHandler.Courses)

	if metricsSvc != nil {
		secured.GET("/system/metrics", metricsHandler.Summary)
	}

	return r, nil
}
