package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/floodgrid/substation-risk-go/internal/analysis"
	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/repository"
	"github.com/floodgrid/substation-risk-go/pkg/response"
)

// AnalysisHandler handles HTTP requests for analysis tasks
type AnalysisHandler struct {
	db    *sql.DB
	cfg   *config.Config
	tasks *repository.AnalysisTaskRepository
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(db *sql.DB, cfg *config.Config) *AnalysisHandler {
	return &AnalysisHandler{
		db:    db,
		cfg:   cfg,
		tasks: repository.NewAnalysisTaskRepository(db),
	}
}

// CreateTaskRequest represents the request body for creating an analysis task
type CreateTaskRequest struct {
	SkillName string `json:"skill_name" binding:"required"`
}

// CreateTask creates a new analysis task and runs it in the background
// POST /api/v1/analysis/tasks
func (h *AnalysisHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	analyzer, err := analysis.GetAnalyzer(req.SkillName, h.db, h.cfg)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if analyzer == nil {
		response.BadRequest(c, "unknown skill "+req.SkillName)
		return
	}

	taskID, err := h.tasks.Create(req.SkillName, "")
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	go func() {
		if err := analyzer.Analyze(context.Background(), taskID); err != nil {
			log.Printf("Analysis task %d (%s) failed: %v", taskID, req.SkillName, err)
		}
	}()

	response.Success(c, gin.H{"task_id": taskID, "skill_name": req.SkillName})
}

// GetTask returns a task with its current progress
// GET /api/v1/analysis/tasks/:id
func (h *AnalysisHandler) GetTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.tasks.Get(id)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	response.Success(c, task)
}

// ListSkills returns the registered analysis skills
// GET /api/v1/analysis/skills
func (h *AnalysisHandler) ListSkills(c *gin.Context) {
	response.Success(c, gin.H{"skills": analysis.SkillNames()})
}
