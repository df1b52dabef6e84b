package services

import (
	"fmt"
	"strings"

	"kvasir/internal/job"
	"kvasir/internal/pipelines"
)

// ChartService runs chart generation jobs.
type ChartService struct {
	engine   *Engine
	pipeline *pipelines.Chart
}

func NewChartService(engine *Engine, pipeline *pipelines.Chart) *ChartService {
	return &ChartService{engine: engine, pipeline: pipeline}
}

func (s *ChartService) Submit(origin string, req pipelines.ChartRequest) (string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", fmt.Errorf("%w: query must not be empty", ErrValidation)
	}
	if req.Data == nil {
		return "", fmt.Errorf("%w: data must not be empty", ErrValidation)
	}
	return s.engine.Submit(origin, s.pipeline.Stages(req), s.pipeline.Assemble), nil
}

func (s *ChartService) Poll(id string) job.StatusRecord { return s.engine.Poll(id) }

func (s *ChartService) Stop(id string) { s.engine.Stop(id) }

// ChartAdjustmentService reshapes previously generated charts. Separate
// from ChartService so each kind keeps its own registry and status
// stream.
type ChartAdjustmentService struct {
	engine   *Engine
	pipeline *pipelines.Chart
}

func NewChartAdjustmentService(engine *Engine, pipeline *pipelines.Chart) *ChartAdjustmentService {
	return &ChartAdjustmentService{engine: engine, pipeline: pipeline}
}

func (s *ChartAdjustmentService) Submit(origin string, req pipelines.ChartAdjustmentRequest) (string, error) {
	if len(req.ChartSchema) == 0 {
		return "", fmt.Errorf("%w: chart schema must not be empty", ErrValidation)
	}
	if strings.TrimSpace(req.Command) == "" {
		return "", fmt.Errorf("%w: adjustment command must not be empty", ErrValidation)
	}
	return s.engine.Submit(origin, s.pipeline.StagesForAdjustment(req), s.pipeline.Assemble), nil
}

func (s *ChartAdjustmentService) Poll(id string) job.StatusRecord { return s.engine.Poll(id) }

func (s *ChartAdjustmentService) Stop(id string) { s.engine.Stop(id) }
