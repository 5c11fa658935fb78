package ui

import "errors"

// Configuration errors
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidPort    = errors.New("invalid listen port")
	ErrInvalidAPIURL  = errors.New("invalid API base URL")
	ErrInvalidConfig  = errors.New("invalid config type for UI server")
)
