package job

import (
	log "github.com/sirupsen/logrus"
)

// Notification describes one terminal transition, emitted once per job
// for observability. One-way: observer failures never affect the job.
type Notification struct {
	JobID         string
	Kind          string
	Status        Status
	ErrorCode     Code
	ErrorMessage  string
	RequestOrigin string
}

// Observer receives terminal-transition notifications.
type Observer interface {
	TerminalTransition(n Notification)
}

type logObserver struct{}

// NewLogObserver returns an Observer that writes one structured logrus
// entry per terminal transition.
func NewLogObserver() Observer {
	return logObserver{}
}

func (logObserver) TerminalTransition(n Notification) {
	fields := log.Fields{
		"job_id":         n.JobID,
		"kind":           n.Kind,
		"status":         n.Status,
		"request_origin": n.RequestOrigin,
	}
	switch n.Status {
	case StatusFailed:
		fields["error_type"] = n.ErrorCode
		fields["error_message"] = n.ErrorMessage
		log.WithFields(fields).Warn("job failed")
	case StatusStopped:
		log.WithFields(fields).Info("job stopped")
	default:
		log.WithFields(fields).Info("job finished")
	}
}
