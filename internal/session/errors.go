package session

import "errors"

// Session manager errors
var (
	ErrTooManySessions    = errors.New("too many open sessions")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionClosed      = errors.New("session closed")
	ErrInvalidMaxSessions = errors.New("max sessions must be positive")
	ErrInvalidIdleTimeout = errors.New("idle timeout must not be negative")
	ErrInvalidSweepPeriod = errors.New("sweep interval must be positive")
	ErrJanitorRunning     = errors.New("janitor already running")
	ErrJanitorNotRunning  = errors.New("janitor not running")
)
