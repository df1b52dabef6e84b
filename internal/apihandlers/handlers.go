// Package apihandlers exposes the job engines over HTTP. Every kind gets
// the same three-operation surface: submit returns a job id immediately,
// poll returns the current {status, response?, error?} snapshot, and
// stop (where supported) writes the terminal stopped record.
package apihandlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kvasir/internal/job"
	"kvasir/internal/pipelines"
	"kvasir/internal/services"
)

// APIHandler groups the per-kind services behind the HTTP surface.
type APIHandler struct {
	Ask             *services.AskService
	Chart           *services.ChartService
	ChartAdjustment *services.ChartAdjustmentService
	Questions       *services.QuestionService
	Correction      *services.CorrectionService
	Indexing        *services.IndexingService
}

// Register wires all job routes onto the group (conventionally /api/v1).
func (h *APIHandler) Register(v1 *gin.RouterGroup) {
	asks := v1.Group("/asks")
	{
		asks.POST("", h.SubmitAsk)
		asks.GET("/:id/result", pollHandler(h.Ask.Poll))
		asks.PATCH("/:id", stopHandler(h.Ask.Stop))
	}
	charts := v1.Group("/charts")
	{
		charts.POST("", h.SubmitChart)
		charts.GET("/:id/result", pollHandler(h.Chart.Poll))
		charts.PATCH("/:id", stopHandler(h.Chart.Stop))
	}
	adjustments := v1.Group("/chart-adjustments")
	{
		adjustments.POST("", h.SubmitChartAdjustment)
		adjustments.GET("/:id/result", pollHandler(h.ChartAdjustment.Poll))
		adjustments.PATCH("/:id", stopHandler(h.ChartAdjustment.Stop))
	}
	questions := v1.Group("/question-recommendations")
	{
		questions.POST("", h.SubmitQuestions)
		questions.GET("/:id/result", pollHandler(h.Questions.Poll))
		questions.PATCH("/:id", stopHandler(h.Questions.Stop))
	}
	corrections := v1.Group("/sql-corrections")
	{
		corrections.POST("", h.SubmitCorrection)
		corrections.GET("/:id/result", pollHandler(h.Correction.Poll))
	}
	indexings := v1.Group("/semantics-preparations")
	{
		indexings.POST("", h.SubmitIndexing)
		indexings.GET("/:id/status", pollHandler(h.Indexing.Poll))
	}
}

// submitResponse is the immediate acknowledgment of a submission.
type submitResponse struct {
	ID string `json:"id"`
}

// requestOrigin identifies the caller for the terminal-transition
// notification; header first, client address as fallback.
func requestOrigin(c *gin.Context) string {
	if origin := c.GetHeader("X-Request-Origin"); origin != "" {
		return origin
	}
	return c.ClientIP()
}

// pollHandler serves the uniform read path. Unknown ids come back as a
// failed record with HTTP 200: clients get one response shape for every
// poll, never a bare 404.
func pollHandler(poll func(id string) job.StatusRecord) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, poll(c.Param("id")))
	}
}

type stopRequest struct {
	Status string `json:"status" binding:"required,eq=stopped"`
}

func stopHandler(stop func(id string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stopRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "body must be {\"status\": \"stopped\"}")
			return
		}
		id := c.Param("id")
		stop(id)
		c.JSON(http.StatusOK, submitResponse{ID: id})
	}
}

func submitted(c *gin.Context, id string, err error) {
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		Internal(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, submitResponse{ID: id})
}

type askSubmitRequest struct {
	Query     string `json:"query" binding:"required"`
	ProjectID string `json:"project_id"`
	ThreadID  string `json:"thread_id"`
}

func (h *APIHandler) SubmitAsk(c *gin.Context) {
	var req askSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id, err := h.Ask.Submit(requestOrigin(c), pipelines.AskRequest{
		Query:     req.Query,
		ProjectID: req.ProjectID,
		ThreadID:  req.ThreadID,
	})
	submitted(c, id, err)
}

type chartSubmitRequest struct {
	Query string `json:"query" binding:"required"`
	SQL   string `json:"sql"`
	Data  any    `json:"data" binding:"required"`
}

func (h *APIHandler) SubmitChart(c *gin.Context) {
	var req chartSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id, err := h.Chart.Submit(requestOrigin(c), pipelines.ChartRequest{
		Query: req.Query,
		SQL:   req.SQL,
		Data:  req.Data,
	})
	submitted(c, id, err)
}

type chartAdjustmentSubmitRequest struct {
	Query       string         `json:"query"`
	ChartSchema map[string]any `json:"chart_schema" binding:"required"`
	Command     string         `json:"command" binding:"required"`
}

func (h *APIHandler) SubmitChartAdjustment(c *gin.Context) {
	var req chartAdjustmentSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id, err := h.ChartAdjustment.Submit(requestOrigin(c), pipelines.ChartAdjustmentRequest{
		Query:       req.Query,
		ChartSchema: req.ChartSchema,
		Command:     req.Command,
	})
	submitted(c, id, err)
}

type questionsSubmitRequest struct {
	ProjectID string   `json:"project_id" binding:"required"`
	Previous  []string `json:"previous_questions"`
	Max       int      `json:"max_questions"`
}

func (h *APIHandler) SubmitQuestions(c *gin.Context) {
	var req questionsSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id, err := h.Questions.Submit(requestOrigin(c), pipelines.QuestionRecommendationRequest{
		ProjectID: req.ProjectID,
		Previous:  req.Previous,
		Max:       req.Max,
	})
	submitted(c, id, err)
}

type correctionSubmitRequest struct {
	SQL   string `json:"sql" binding:"required"`
	Error string `json:"error" binding:"required"`
}

func (h *APIHandler) SubmitCorrection(c *gin.Context) {
	var req correctionSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id, err := h.Correction.Submit(requestOrigin(c), pipelines.SQLCorrectionRequest{
		SQL:   req.SQL,
		Error: req.Error,
	})
	submitted(c, id, err)
}

type indexingSubmitRequest struct {
	ProjectID string          `json:"project_id" binding:"required"`
	MDL       json.RawMessage `json:"mdl" binding:"required"`
}

func (h *APIHandler) SubmitIndexing(c *gin.Context) {
	var req indexingSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id, err := h.Indexing.Submit(requestOrigin(c), pipelines.IndexingRequest{
		ProjectID: req.ProjectID,
		MDL:       req.MDL,
	})
	submitted(c, id, err)
}
