package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/handler"
	"github.com/floodgrid/substation-risk-go/internal/middleware"
	"github.com/floodgrid/substation-risk-go/internal/repository"
	"github.com/floodgrid/substation-risk-go/internal/service"
)

// SetupRouter wires the HTTP routes
func SetupRouter(db *sql.DB, cfg *config.Config) (*gin.Engine, error) {
	fuzzyEngine, ahpEngine, criteria, err := service.BuildEngines(cfg)
	if err != nil {
		return nil, err
	}

	substationRepo := repository.NewSubstationRepository(db)
	riskRepo := repository.NewRiskFieldRepository(db)
	reportRepo := repository.NewReportRepository(db)

	riskService := service.NewRiskService(substationRepo, fuzzyEngine, ahpEngine)
	importService := service.NewImportService(substationRepo, riskRepo, criteria)

	substations := handler.NewSubstationHandler(substationRepo, importService)
	reports := handler.NewReportHandler(reportRepo, importService)
	analyses := handler.NewAnalysisHandler(db, cfg)
	weights := handler.NewWeightsHandler(riskService)

	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Substation Risk Index API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(300, time.Minute))
	{
		api.GET("/substations", substations.List)
		api.GET("/substations/:code", substations.Get)
		api.GET("/exports/scores", substations.ExportScores)

		api.GET("/reports/:scenario", reports.GetReport)
		api.GET("/reports/:scenario/export", reports.ExportReport)

		api.GET("/weights", weights.Get)

		api.GET("/analysis/skills", analyses.ListSkills)
		api.GET("/analysis/tasks/:id", analyses.GetTask)

		// Mutating endpoints require an operator token
		authed := api.Group("")
		authed.Use(middleware.Auth(cfg.JWTSecret))
		{
			authed.POST("/substations/import", substations.ImportRegistry)
			authed.POST("/risk-fields/:scenario", reports.ImportRiskField)
			authed.POST("/analysis/tasks", analyses.CreateTask)
		}
	}

	return r, nil
}
