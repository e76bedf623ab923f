package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/floodgrid/substation-risk-go/internal/service"
	"github.com/floodgrid/substation-risk-go/pkg/response"
)

// WeightsHandler exposes the derived criticality weights and their
// consistency audit
type WeightsHandler struct {
	risk *service.RiskService
}

// NewWeightsHandler creates a new weights handler
func NewWeightsHandler(risk *service.RiskService) *WeightsHandler {
	return &WeightsHandler{risk: risk}
}

// Get returns the weight vector, lambda max, CI and CR
// GET /api/v1/weights
func (h *WeightsHandler) Get(c *gin.Context) {
	response.Success(c, h.risk.Weights())
}
