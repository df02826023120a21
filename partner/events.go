package partner

import "time"

// EventKind identifies a session lifecycle event.
type EventKind int

const (
	EventBootstrapSuccess EventKind = iota
	EventBootstrapDegraded
	EventBootstrapFailure
	EventRefreshSuccess
	EventRefreshFailure
	EventRetry
	EventSessionExpired
)

func (k EventKind) String() string {
	switch k {
	case EventBootstrapSuccess:
		return "bootstrap_success"
	case EventBootstrapDegraded:
		return "bootstrap_degraded"
	case EventBootstrapFailure:
		return "bootstrap_failure"
	case EventRefreshSuccess:
		return "refresh_success"
	case EventRefreshFailure:
		return "refresh_failure"
	case EventRetry:
		return "retry"
	case EventSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

// Event is reported to the observer. Status is the HTTP status when one was received.
// AccessExpiresAt is the unverified exp of a newly stored access token; zero for opaque
// tokens and for events that store nothing.
type Event struct {
	Kind            EventKind
	Status          int
	Duration        time.Duration
	Err             error
	AccessExpiresAt time.Time
}

// Observer receives events synchronously; it must not block.
type Observer func(Event)
