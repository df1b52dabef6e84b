package job

import "context"

// Outputs is the accumulated key/value output of the stages run so far.
// Each stage reads the keys written by its predecessors and contributes
// its own.
type Outputs map[string]any

// StageFunc is one opaque asynchronous unit of work. It receives the
// prior stages' outputs and reports its result as a tagged Outcome
// rather than signaling emptiness or failure through error values alone.
type StageFunc func(ctx context.Context, prior Outputs) Outcome

// Stage pairs a stage function with the in-progress status written while
// it runs.
type Stage struct {
	Status Status
	Run    StageFunc
}

type outcomeTag int

const (
	outcomeOk outcomeTag = iota
	outcomeEmpty
	outcomeFailed
)

// Outcome is the result of one stage: Ok with outputs, Empty with a
// pre-classified code, or Failed with an error for the classifier.
type Outcome struct {
	tag     outcomeTag
	outputs Outputs
	code    Code
	message string
	err     error
}

// Ok marks a successful stage; out is merged into the accumulated
// outputs for later stages.
func Ok(out Outputs) Outcome {
	return Outcome{tag: outcomeOk, outputs: out}
}

// EmptyResult marks a semantic failure: the stage ran fine but produced
// no usable output (empty retrieval set, no generated candidates). The
// code is chosen by the stage since only it knows which emptiness this is.
func EmptyResult(code Code, message string) Outcome {
	return Outcome{tag: outcomeEmpty, code: code, message: message}
}

// Failed marks a stage error to be mapped by the kind's Classifier.
func Failed(err error) Outcome {
	return Outcome{tag: outcomeFailed, err: err}
}

func (o Outcome) ok() bool    { return o.tag == outcomeOk }
func (o Outcome) empty() bool { return o.tag == outcomeEmpty }

// Err exposes the failure for classification; nil unless Failed.
func (o Outcome) Err() error { return o.err }
