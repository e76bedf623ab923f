package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floodgrid/substation-risk-go/internal/ingest"
	"github.com/floodgrid/substation-risk-go/internal/models"
	"github.com/floodgrid/substation-risk-go/internal/repository"
	"github.com/floodgrid/substation-risk-go/internal/service"
	"github.com/floodgrid/substation-risk-go/pkg/response"
)

// ReportHandler handles HTTP requests for per-scenario risk fields and
// autocorrelation reports
type ReportHandler struct {
	reportRepo *repository.ReportRepository
	importer   *service.ImportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportRepo *repository.ReportRepository, importer *service.ImportService) *ReportHandler {
	return &ReportHandler{reportRepo: reportRepo, importer: importer}
}

// ImportRiskField loads one scenario's fused risk scores from an uploaded CSV
// POST /api/v1/risk-fields/:scenario
func (h *ReportHandler) ImportRiskField(c *gin.Context) {
	scenario, err := models.ParseScenario(c.Param("scenario"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing risk field file upload")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer f.Close()

	count, err := h.importer.ImportRiskField(f, scenario)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"scenario": scenario, "imported": count})
}

// GetReport returns one scenario's autocorrelation report
// GET /api/v1/reports/:scenario
func (h *ReportHandler) GetReport(c *gin.Context) {
	scenario, err := models.ParseScenario(c.Param("scenario"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	report, err := h.reportRepo.GetByScenario(scenario)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.Success(c, report)
}

// ExportReport streams one scenario's report as CSV
// GET /api/v1/reports/:scenario/export
func (h *ReportHandler) ExportReport(c *gin.Context) {
	scenario, err := models.ParseScenario(c.Param("scenario"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	report, err := h.reportRepo.GetByScenario(scenario)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="clusters_`+string(scenario)+`.csv"`)
	if err := ingest.WriteClusterReport(c.Writer, report); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
