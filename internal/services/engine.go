// Package services exposes submit/poll/stop for every job kind over one
// generic engine. Each kind owns its registry, status set, and
// classifier; the lifecycle semantics live in internal/job and are
// shared.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"kvasir/internal/job"
)

// ErrValidation marks a rejected submission. It is the only failure that
// surfaces before a job id exists, and it propagates to the HTTP layer
// as a 400 instead of a StatusRecord.
var ErrValidation = errors.New("validation error")

// Engine runs one job kind's lifecycle: it owns the kind's registry and
// runner and implements the submit/poll/stop contract.
type Engine struct {
	kind         string
	registry     *job.Registry
	runner       *job.Runner
	notFoundCode job.Code
}

// EngineConfig assembles an Engine for one kind.
type EngineConfig struct {
	Kind     string
	Registry *job.Registry
	Classify job.Classifier
	Observer job.Observer
	// NotFoundCode is the kind's code for polls of unknown or expired
	// ids; zero value falls back to NOT_FOUND.
	NotFoundCode job.Code
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.NotFoundCode == "" {
		cfg.NotFoundCode = job.CodeNotFound
	}
	return &Engine{
		kind:     cfg.Kind,
		registry: cfg.Registry,
		runner: &job.Runner{
			Kind:     cfg.Kind,
			Registry: cfg.Registry,
			Gate:     job.NewGate(cfg.Registry),
			Classify: cfg.Classify,
			Observer: cfg.Observer,
		},
		notFoundCode: cfg.NotFoundCode,
	}
}

// Submit registers a new job and starts its stages on a fresh goroutine.
// The initial in-progress record is written synchronously, so a poll
// issued right after submit always finds the job.
func (e *Engine) Submit(origin string, stages []job.Stage, assemble func(job.Outputs) any) string {
	id := uuid.NewString()
	e.registry.Put(id, job.InProgress(stages[0].Status))
	log.WithFields(log.Fields{"kind": e.kind, "job_id": id}).Info("job submitted")

	// The job outlives the submitting request; run on a background
	// context rather than the request's.
	go e.runner.Run(context.Background(), id, origin, stages, assemble)
	return id
}

// Poll returns the current record for id. An unknown or expired id
// yields a failed record with the kind's not-found code; the caller
// never sees a raw missing-key condition.
func (e *Engine) Poll(id string) job.StatusRecord {
	if rec, ok := e.registry.Get(id); ok {
		return rec
	}
	return job.Failure(e.notFoundCode, fmt.Sprintf("job %q was not found or has expired", id))
}

// Stop unconditionally writes the terminal stopped record. Last write
// wins: a stop arriving after the job finished naturally replaces the
// finished record too. That stomp is long-observed client-facing
// behavior and is kept; the reverse race (a late stage completion
// overwriting stopped) is prevented inside the runner.
func (e *Engine) Stop(id string) {
	e.registry.Put(id, job.Stopped())
	log.WithFields(log.Fields{"kind": e.kind, "job_id": id}).Info("job stopped")
}

// Registry exposes the kind's registry for sweeping and diagnostics.
func (e *Engine) Registry() *job.Registry { return e.registry }

// Kind names the job kind this engine runs.
func (e *Engine) Kind() string { return e.kind }
