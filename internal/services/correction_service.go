package services

import (
	"fmt"
	"strings"

	"kvasir/internal/job"
	"kvasir/internal/pipelines"
)

// CorrectionService runs SQL correction jobs. Corrections are short and
// single-stage; they do not support stop.
type CorrectionService struct {
	engine   *Engine
	pipeline *pipelines.SQLCorrection
}

func NewCorrectionService(engine *Engine, pipeline *pipelines.SQLCorrection) *CorrectionService {
	return &CorrectionService{engine: engine, pipeline: pipeline}
}

func (s *CorrectionService) Submit(origin string, req pipelines.SQLCorrectionRequest) (string, error) {
	if strings.TrimSpace(req.SQL) == "" {
		return "", fmt.Errorf("%w: sql must not be empty", ErrValidation)
	}
	if strings.TrimSpace(req.Error) == "" {
		return "", fmt.Errorf("%w: error message must not be empty", ErrValidation)
	}
	return s.engine.Submit(origin, s.pipeline.Stages(req), s.pipeline.Assemble), nil
}

func (s *CorrectionService) Poll(id string) job.StatusRecord { return s.engine.Poll(id) }
