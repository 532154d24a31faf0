package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/argus-sec/argus/internal/api/handlers"
	"github.com/argus-sec/argus/internal/api/middleware"
	"github.com/argus-sec/argus/internal/blocklist"
	"github.com/argus-sec/argus/internal/config"
	"github.com/argus-sec/argus/internal/metrics"
	"github.com/argus-sec/argus/internal/models"
	"github.com/argus-sec/argus/internal/pipeline"
	"github.com/argus-sec/argus/internal/services"
)

// Deps carries the shared components the routes need.
type Deps struct {
	Pipeline  *pipeline.Pipeline
	Blocks    *blocklist.BlockList
	Decisions *services.DecisionService
}

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, deps Deps) error {
	if err := db.AutoMigrate(
		&models.AuditRecord{},
		&models.Decision{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	router.GET("/api/v1/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Every request below this group runs through the security pipeline.
	api := router.Group("/api/v1")
	api.Use(middleware.Gateway(deps.Pipeline))

	auditHandler := handlers.NewAuditHandler(deps.Pipeline)
	blockHandler := handlers.NewBlockHandler(deps.Blocks, deps.Decisions)
	decisionHandler := handlers.NewDecisionHandler(deps.Decisions)

	admin := api.Group("")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/audit/:id", auditHandler.Get)
		admin.GET("/audit/:id/verify", auditHandler.Verify)
		admin.GET("/blocks", blockHandler.List)
		admin.POST("/blocks", blockHandler.Block)
		admin.DELETE("/blocks/:identity", blockHandler.Unblock)
		admin.GET("/decisions", decisionHandler.List)
	}

	return nil
}
