package services

import (
	"fmt"
	"strings"

	"kvasir/internal/job"
	"kvasir/internal/pipelines"
)

// IndexingService deploys MDL manifests. Indexing mutates the vector
// store, so it cannot be stopped once submitted.
type IndexingService struct {
	engine   *Engine
	pipeline *pipelines.Indexing
}

func NewIndexingService(engine *Engine, pipeline *pipelines.Indexing) *IndexingService {
	return &IndexingService{engine: engine, pipeline: pipeline}
}

func (s *IndexingService) Submit(origin string, req pipelines.IndexingRequest) (string, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return "", fmt.Errorf("%w: project id must not be empty", ErrValidation)
	}
	if len(req.MDL) == 0 {
		return "", fmt.Errorf("%w: mdl manifest must not be empty", ErrValidation)
	}
	return s.engine.Submit(origin, s.pipeline.Stages(req), s.pipeline.Assemble), nil
}

func (s *IndexingService) Poll(id string) job.StatusRecord { return s.engine.Poll(id) }
