package job

import (
	"context"

	log "github.com/sirupsen/logrus"
)

/*
Runner drives a job through its ordered stage list, writing a fresh
StatusRecord around every stage and honoring the cancellation gate at
each boundary.

Every write goes through Registry.PutIfNotTerminal: a stop request can
land while a stage is executing, and the stage's late result must not
overwrite the terminal stopped record. Terminal states are sticky; the
runner assigns at most one terminal state per job.
*/

// Runner executes stage lists for one job kind. Stage failures are never
// retried here; retries, if any, live inside the opaque stage functions.
type Runner struct {
	Kind     string
	Registry *Registry
	Gate     *Gate
	Classify Classifier
	Observer Observer
}

// Run executes stages in order for the job id, assembling the final
// result from the accumulated outputs. It is called on its own goroutine;
// it never panics outward and never returns an error, every failure ends
// as a failed StatusRecord.
func (r *Runner) Run(ctx context.Context, id, origin string, stages []Stage, assemble func(Outputs) any) {
	classify := r.Classify
	if classify == nil {
		classify = ClassifyOthers
	}

	acc := Outputs{}
	for _, stage := range stages {
		if r.Gate.Stopped(id) {
			// The stopped record is already in place; leave it as-is.
			r.notify(id, origin, Stopped())
			return
		}
		if !r.Registry.PutIfNotTerminal(id, InProgress(stage.Status)) {
			return
		}
		log.WithFields(log.Fields{"kind": r.Kind, "job_id": id, "stage": stage.Status}).Debug("running stage")

		out := stage.Run(ctx, acc)
		switch {
		case out.empty():
			r.terminate(id, origin, Failure(out.code, out.message))
			return
		case !out.ok():
			code, msg := classify(out.err)
			r.terminate(id, origin, Failure(code, msg))
			return
		}
		for k, v := range out.outputs {
			acc[k] = v
		}
	}

	if r.Gate.Stopped(id) {
		r.notify(id, origin, Stopped())
		return
	}
	var result any
	if assemble != nil {
		result = assemble(acc)
	}
	r.terminate(id, origin, Finished(result))
}

// terminate writes a terminal record unless a racing stop (or other
// terminal write) got there first, and notifies the observer with
// whatever state actually stuck.
func (r *Runner) terminate(id, origin string, rec StatusRecord) {
	if !r.Registry.PutIfNotTerminal(id, rec) {
		if cur, ok := r.Registry.Get(id); ok {
			rec = cur
		}
	}
	r.notify(id, origin, rec)
}

func (r *Runner) notify(id, origin string, rec StatusRecord) {
	if r.Observer == nil {
		return
	}
	n := Notification{
		JobID:         id,
		Kind:          r.Kind,
		Status:        rec.Status,
		RequestOrigin: origin,
	}
	if rec.Error != nil {
		n.ErrorCode = rec.Error.Code
		n.ErrorMessage = rec.Error.Message
	}
	r.Observer.TerminalTransition(n)
}
