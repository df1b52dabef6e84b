package job

import "errors"

// Code identifies a failure class on the wire. The set is closed: clients
// only ever see one of these values, never a free-form string.
type Code string

const (
	CodeOthers           Code = "OTHERS"
	CodeNotFound         Code = "NOT_FOUND"
	CodeResourceNotFound Code = "RESOURCE_NOT_FOUND"
	CodeNoRelevantData   Code = "NO_RELEVANT_DATA"
	CodeNoRelevantSQL    Code = "NO_RELEVANT_SQL"
	CodeNoChart          Code = "NO_CHART"
	CodeMDLParseError    Code = "MDL_PARSE_ERROR"
	CodeIndexingFailed   Code = "INDEXING_FAILED"
)

// Error is the {code, message} pair surfaced to polling clients. Message
// carries human-readable detail; Code is the only machine-readable part.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Classifier maps a stage failure onto the closed taxonomy. Implementations
// recognize domain sentinels; anything unrecognized must fall through to
// CodeOthers with the error text as message.
type Classifier func(err error) (Code, string)

// ClassifyOthers is the catch-all classifier: everything becomes
// CodeOthers. Kind-specific classifiers wrap it via Rules.
func ClassifyOthers(err error) (Code, string) {
	return CodeOthers, err.Error()
}

// Rule associates a sentinel error with the code it classifies to.
type Rule struct {
	Sentinel error
	Code     Code
}

// Rules builds a Classifier that matches err against each rule's sentinel
// with errors.Is, in order, falling back to CodeOthers. The message is
// always err.Error(); no type information beyond the text leaks out.
func Rules(rules ...Rule) Classifier {
	return func(err error) (Code, string) {
		for _, r := range rules {
			if errors.Is(err, r.Sentinel) {
				return r.Code, err.Error()
			}
		}
		return CodeOthers, err.Error()
	}
}
