package services

import (
	"fmt"
	"strings"

	"kvasir/internal/job"
	"kvasir/internal/pipelines"
)

// AskService runs NL-to-SQL jobs.
type AskService struct {
	engine   *Engine
	pipeline *pipelines.Ask
}

func NewAskService(engine *Engine, pipeline *pipelines.Ask) *AskService {
	return &AskService{engine: engine, pipeline: pipeline}
}

func (s *AskService) Submit(origin string, req pipelines.AskRequest) (string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", fmt.Errorf("%w: query must not be empty", ErrValidation)
	}
	return s.engine.Submit(origin, s.pipeline.Stages(req), s.pipeline.Assemble), nil
}

func (s *AskService) Poll(id string) job.StatusRecord { return s.engine.Poll(id) }

func (s *AskService) Stop(id string) { s.engine.Stop(id) }
