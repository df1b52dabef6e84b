package job

/*
Job status values and the StatusRecord snapshot stored in the Registry.
Each job kind defines its own in-progress statuses; the terminal set
(finished, failed, stopped) is shared by every kind.
*/

// Status is the lifecycle state of a job. In-progress values are
// kind-specific (e.g. "understanding", "searching"); the terminal values
// below are common to all kinds.
type Status string

const (
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
	StatusStopped  Status = "stopped"
)

// Terminal reports whether no further stage execution happens from s.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusFailed || s == StatusStopped
}

// StatusRecord is the complete snapshot of a job's state. Records are
// written whole and replaced whole; readers never observe a partial
// update. Result and Error are mutually exclusive: Result is set only on
// finished, Error only on failed, neither while in progress or stopped.
type StatusRecord struct {
	Status Status `json:"status"`
	Result any    `json:"response,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// InProgress returns a record for a job currently in the given stage.
func InProgress(s Status) StatusRecord {
	return StatusRecord{Status: s}
}

// Finished returns the successful terminal record carrying the result.
func Finished(result any) StatusRecord {
	return StatusRecord{Status: StatusFinished, Result: result}
}

// Failure returns the failed terminal record carrying a classified error.
func Failure(code Code, message string) StatusRecord {
	return StatusRecord{Status: StatusFailed, Error: &Error{Code: code, Message: message}}
}

// Stopped returns the terminal record written by a stop request.
func Stopped() StatusRecord {
	return StatusRecord{Status: StatusStopped}
}
