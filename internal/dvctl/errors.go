package dvctl

import "errors"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrInvalidAssetID = errors.New("invalid asset id")
	ErrAPI            = errors.New("API error")
)
