package telemetry

import "errors"

// Feed configuration errors
var (
	ErrInvalidCapacity    = errors.New("capacity must be greater than 0")
	ErrInvalidUploadRatio = errors.New("upload ratio must be between 0 and 1")
)

// Ticker errors
var (
	ErrFeedRequired   = errors.New("feed is required")
	ErrInvalidPeriod  = errors.New("period must be greater than 0")
	ErrAlreadyRunning = errors.New("ticker is already running")
	ErrNotRunning     = errors.New("ticker is not running")
)
