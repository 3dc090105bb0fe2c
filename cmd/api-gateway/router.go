package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/goalie-roster-api/api/swagger"
	"github.com/noah-isme/goalie-roster-api/internal/handler"
	"github.com/noah-isme/goalie-roster-api/internal/middleware"
	"github.com/noah-isme/goalie-roster-api/internal/models"
	"github.com/noah-isme/goalie-roster-api/pkg/config"
	"github.com/noah-isme/goalie-roster-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/goalie-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/goalie-roster-api/pkg/middleware/requestid"
)

type routerDeps struct {
	imports  *handler.ImportHandler
	athletes *handler.AthleteHandler
	metrics  *handler.MetricsHandler
	tokens   middleware.TokenValidator
	observer middleware.RequestObserver
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.observer))

	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)
	r.GET("/metrics", deps.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleCoach)

	imports := api.Group("/imports", staff)
	imports.POST("", deps.imports.Create)
	imports.GET("/:jobId", deps.imports.GetJob)

	athletes := api.Group("/athletes", staff)
	athletes.GET("", deps.athletes.List)
	athletes.GET("/export", deps.athletes.Export)
	athletes.GET("/:id", deps.athletes.Get)
	athletes.GET("/:id/sessions", deps.athletes.Sessions)

	api.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), deps.metrics.Summary)

	return r
}
