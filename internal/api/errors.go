package api

import "errors"

// Configuration errors
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidPort    = errors.New("invalid listen port")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Request errors
var (
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMissingField    = errors.New("missing required field")
	ErrSessionRequired = errors.New("session id is required")
)

// Server errors
var (
	ErrMQTTInitFailed = errors.New("failed to create MQTT client")
)
