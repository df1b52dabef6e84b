package apihandlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvasir/internal/job"
	"kvasir/internal/llm"
	"kvasir/internal/pipelines"
	"kvasir/internal/services"
	"kvasir/internal/store"
)

type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
}

func (c *scriptedCompleter) Complete(context.Context, []llm.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *scriptedCompleter) Name() string      { return "scripted" }
func (c *scriptedCompleter) ModelName() string { return "scripted" }

type stubRetriever struct {
	docs []store.ScoredDocument
}

func (r *stubRetriever) Search(context.Context, string, string, int) ([]store.ScoredDocument, error) {
	return r.docs, nil
}

func newTestRouter(completer *scriptedCompleter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	retriever := &stubRetriever{docs: []store.ScoredDocument{
		{Document: store.Document{Content: "Model customers: id, name"}, Score: 0.9},
	}}
	newEngine := func(kind string, classify job.Classifier, notFound job.Code) *services.Engine {
		return services.NewEngine(services.EngineConfig{
			Kind:         kind,
			Registry:     job.NewRegistry(job.RegistryConfig{TTL: time.Minute, Capacity: 100}),
			Classify:     classify,
			NotFoundCode: notFound,
		})
	}

	askPipeline := &pipelines.Ask{Completer: completer, Retriever: retriever}
	chartPipeline := &pipelines.Chart{Completer: completer}
	questionPipeline := &pipelines.QuestionRecommendation{Completer: completer, Retriever: retriever}
	correctionPipeline := &pipelines.SQLCorrection{Completer: completer}
	indexingPipeline := &pipelines.Indexing{}

	handler := &APIHandler{
		Ask:             services.NewAskService(newEngine("ask", askPipeline.Classify, job.CodeResourceNotFound), askPipeline),
		Chart:           services.NewChartService(newEngine("chart", chartPipeline.Classify, job.CodeNotFound), chartPipeline),
		ChartAdjustment: services.NewChartAdjustmentService(newEngine("chart_adjustment", chartPipeline.Classify, job.CodeNotFound), chartPipeline),
		Questions:       services.NewQuestionService(newEngine("question_recommendation", questionPipeline.Classify, job.CodeNotFound), questionPipeline),
		Correction:      services.NewCorrectionService(newEngine("sql_correction", correctionPipeline.Classify, job.CodeNotFound), correctionPipeline),
		Indexing:        services.NewIndexingService(newEngine("indexing", pipelines.IndexingClassifier, job.CodeNotFound), indexingPipeline),
	}

	router := gin.New()
	handler.Register(router.Group("/api/v1"))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func pollUntilTerminal(t *testing.T, router *gin.Engine, path string) map[string]any {
	t.Helper()
	var body map[string]any
	require.Eventually(t, func() bool {
		var w *httptest.ResponseRecorder
		w, body = doJSON(t, router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code)
		status, _ := body["status"].(string)
		return job.Status(status).Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return body
}

func TestSubmitAndPollAsk(t *testing.T) {
	router := newTestRouter(&scriptedCompleter{replies: []string{
		"rephrased question",
		`[{"sql": "SELECT 1", "summary": "one"}]`,
	}})

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/asks", `{"query": "top customers"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id, "submit acknowledges with a job id immediately")

	result := pollUntilTerminal(t, router, "/api/v1/asks/"+id+"/result")
	assert.Equal(t, "finished", result["status"])
	assert.Nil(t, result["error"])

	response, ok := result["response"].([]any)
	require.True(t, ok)
	require.Len(t, response, 1)
	candidate := response[0].(map[string]any)
	assert.Equal(t, "SELECT 1", candidate["sql"])
	assert.Equal(t, "one", candidate["summary"])
}

func TestSubmitAskRejectsMissingQuery(t *testing.T) {
	router := newTestRouter(&scriptedCompleter{})

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/asks", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotNil(t, body["error"])
}

func TestPollUnknownIDKeepsUniformShape(t *testing.T) {
	router := newTestRouter(&scriptedCompleter{})

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/asks/unknown-id/result", "")
	assert.Equal(t, http.StatusOK, w.Code, "unknown ids poll as failed records, not 404s")
	assert.Equal(t, "failed", body["status"])
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "RESOURCE_NOT_FOUND", errBody["code"])
}

func TestStopAsk(t *testing.T) {
	// Stop is last-write-wins, so the final poll reads stopped no matter
	// how far the job got before the PATCH landed.
	router := newTestRouter(&scriptedCompleter{})

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/asks", `{"query": "top customers"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := body["id"].(string)

	w, _ = doJSON(t, router, http.MethodPatch, "/api/v1/asks/"+id, `{"status": "stopped"}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := pollUntilTerminal(t, router, "/api/v1/asks/"+id+"/result")
	assert.Equal(t, "stopped", result["status"])
}

func TestStopRejectsOtherStatuses(t *testing.T) {
	router := newTestRouter(&scriptedCompleter{})

	w, _ := doJSON(t, router, http.MethodPatch, "/api/v1/asks/some-id", `{"status": "paused"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitCorrectionValidation(t *testing.T) {
	router := newTestRouter(&scriptedCompleter{})

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/sql-corrections", `{"sql": "SELECT 1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "error field is required")
}

func TestIndexingStatusUnknownID(t *testing.T) {
	router := newTestRouter(&scriptedCompleter{})

	w, body := doJSON(t, router, http.MethodGet, "/api/v1/semantics-preparations/unknown/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", body["status"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}
