package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvasir/internal/job"
	"kvasir/internal/pipelines"
)

func newChartServices(completer *scriptedCompleter) (*ChartService, *ChartAdjustmentService) {
	pipeline := &pipelines.Chart{Completer: completer}
	newEngine := func(kind string) *Engine {
		return NewEngine(EngineConfig{
			Kind:     kind,
			Registry: job.NewRegistry(job.RegistryConfig{TTL: time.Minute, Capacity: 100}),
			Classify: pipeline.Classify,
		})
	}
	return NewChartService(newEngine("chart"), pipeline),
		NewChartAdjustmentService(newEngine("chart_adjustment"), pipeline)
}

func chartData() any {
	return map[string]any{
		"columns": []string{"name", "total"},
		"rows":    [][]any{{"acme", 120}, {"globex", 80}},
	}
}

func TestChartHappyPath(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		`{"mark": "bar", "encoding": {"x": {"field": "name"}, "y": {"field": "total"}}}`,
	}}
	svc, _ := newChartServices(completer)

	id, err := svc.Submit("test", pipelines.ChartRequest{
		Query: "revenue per customer",
		SQL:   "SELECT name, total FROM revenue",
		Data:  chartData(),
	})
	require.NoError(t, err)

	rec := waitTerminal(t, svc.Poll, id)
	require.Equal(t, job.StatusFinished, rec.Status)

	schema, ok := rec.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bar", schema["mark"])
}

func TestChartNoChart(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{`{}`}}
	svc, _ := newChartServices(completer)

	id, err := svc.Submit("test", pipelines.ChartRequest{Query: "q", Data: chartData()})
	require.NoError(t, err)

	rec := waitTerminal(t, svc.Poll, id)
	require.Equal(t, job.StatusFailed, rec.Status)
	require.NotNil(t, rec.Error)
	assert.Equal(t, job.CodeNoChart, rec.Error.Code)
}

func TestChartSubmitValidation(t *testing.T) {
	svc, _ := newChartServices(&scriptedCompleter{})

	_, err := svc.Submit("test", pipelines.ChartRequest{Query: "", Data: chartData()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit("test", pipelines.ChartRequest{Query: "q", Data: nil})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChartAdjustment(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		`{"mark": "line", "encoding": {"x": {"field": "name"}}}`,
	}}
	_, svc := newChartServices(completer)

	id, err := svc.Submit("test", pipelines.ChartAdjustmentRequest{
		ChartSchema: map[string]any{"mark": "bar"},
		Command:     "make it a line chart",
	})
	require.NoError(t, err)

	rec := waitTerminal(t, svc.Poll, id)
	require.Equal(t, job.StatusFinished, rec.Status)
	schema, ok := rec.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "line", schema["mark"])
}

func TestChartAdjustmentValidation(t *testing.T) {
	_, svc := newChartServices(&scriptedCompleter{})

	_, err := svc.Submit("test", pipelines.ChartAdjustmentRequest{Command: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit("test", pipelines.ChartAdjustmentRequest{ChartSchema: map[string]any{"mark": "bar"}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCorrectionPipeline(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		`[{"sql": "SELECT id FROM users", "summary": "fixed the table name"}]`,
	}}
	pipeline := &pipelines.SQLCorrection{Completer: completer}
	svc := NewCorrectionService(NewEngine(EngineConfig{
		Kind:     "sql_correction",
		Registry: job.NewRegistry(job.RegistryConfig{TTL: time.Minute, Capacity: 100}),
		Classify: pipeline.Classify,
	}), pipeline)

	id, err := svc.Submit("test", pipelines.SQLCorrectionRequest{
		SQL:   "SELECT id FROM user",
		Error: `relation "user" does not exist`,
	})
	require.NoError(t, err)

	rec := waitTerminal(t, svc.Poll, id)
	require.Equal(t, job.StatusFinished, rec.Status)
	candidates, ok := rec.Result.([]job.Candidate)
	require.True(t, ok)
	require.Len(t, candidates, 1)
	assert.Equal(t, "SELECT id FROM users", candidates[0].Statement)
}

func TestQuestionRecommendation(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		`["What is the monthly revenue trend?", "Which customers churned last quarter?"]`,
	}}
	pipeline := &pipelines.QuestionRecommendation{
		Completer: completer,
		Retriever: &stubRetriever{docs: twoDocs()},
	}
	svc := NewQuestionService(NewEngine(EngineConfig{
		Kind:     "question_recommendation",
		Registry: job.NewRegistry(job.RegistryConfig{TTL: time.Minute, Capacity: 100}),
		Classify: pipeline.Classify,
	}), pipeline)

	id, err := svc.Submit("test", pipelines.QuestionRecommendationRequest{ProjectID: "p1", Max: 3})
	require.NoError(t, err)

	rec := waitTerminal(t, svc.Poll, id)
	require.Equal(t, job.StatusFinished, rec.Status)
	questions, ok := rec.Result.([]string)
	require.True(t, ok)
	assert.Len(t, questions, 2)
}
