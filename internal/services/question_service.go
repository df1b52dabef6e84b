package services

import (
	"fmt"
	"strings"

	"kvasir/internal/job"
	"kvasir/internal/pipelines"
)

// QuestionService runs question recommendation jobs.
type QuestionService struct {
	engine   *Engine
	pipeline *pipelines.QuestionRecommendation
}

func NewQuestionService(engine *Engine, pipeline *pipelines.QuestionRecommendation) *QuestionService {
	return &QuestionService{engine: engine, pipeline: pipeline}
}

func (s *QuestionService) Submit(origin string, req pipelines.QuestionRecommendationRequest) (string, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return "", fmt.Errorf("%w: project id must not be empty", ErrValidation)
	}
	return s.engine.Submit(origin, s.pipeline.Stages(req), s.pipeline.Assemble), nil
}

func (s *QuestionService) Poll(id string) job.StatusRecord { return s.engine.Poll(id) }

func (s *QuestionService) Stop(id string) { s.engine.Stop(id) }
