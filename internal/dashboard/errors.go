package dashboard

import "errors"

// Input errors
var (
	ErrUnknownTab    = errors.New("unknown tab")
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownAsset  = errors.New("unknown asset")
)

// Configuration errors
var (
	ErrCatalogRequired = errors.New("asset catalog is required")
	ErrInvalidTTL      = errors.New("action ttl must be greater than 0")
)

// Lifecycle errors
var (
	ErrClosed     = errors.New("dashboard is closed")
	ErrTransition = errors.New("state transition failed")
)

// errStale marks a timer callback superseded by a newer action.
var errStale = errors.New("stale action timer")
