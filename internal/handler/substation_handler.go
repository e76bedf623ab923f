package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floodgrid/substation-risk-go/internal/ingest"
	"github.com/floodgrid/substation-risk-go/internal/repository"
	"github.com/floodgrid/substation-risk-go/internal/service"
	"github.com/floodgrid/substation-risk-go/pkg/response"
)

// SubstationHandler handles HTTP requests for the asset registry
type SubstationHandler struct {
	repo     *repository.SubstationRepository
	importer *service.ImportService
}

// NewSubstationHandler creates a new substation handler
func NewSubstationHandler(repo *repository.SubstationRepository, importer *service.ImportService) *SubstationHandler {
	return &SubstationHandler{repo: repo, importer: importer}
}

// List returns all substations with their computed scores
// GET /api/v1/substations
func (h *SubstationHandler) List(c *gin.Context) {
	substations, err := h.repo.GetAll()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{
		"substations": substations,
		"count":       len(substations),
	})
}

// Get returns one substation by its external code
// GET /api/v1/substations/:code
func (h *SubstationHandler) Get(c *gin.Context) {
	s, err := h.repo.GetByCode(c.Param("code"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.Success(c, s)
}

// ImportRegistry loads the asset registry from an uploaded CSV file
// POST /api/v1/substations/import
func (h *SubstationHandler) ImportRegistry(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing registry file upload")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer f.Close()

	count, err := h.importer.ImportRegistry(f)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"imported": count})
}

// ExportScores streams the computed scores as CSV for the GIS fusion tool
// GET /api/v1/exports/scores
func (h *SubstationHandler) ExportScores(c *gin.Context) {
	substations, err := h.repo.GetAll()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="scores.csv"`)
	if err := ingest.WriteScores(c.Writer, substations); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
