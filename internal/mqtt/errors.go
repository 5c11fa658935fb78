package mqtt

import "errors"

// Client errors
var (
	ErrInvalidServerURL = errors.New("invalid MQTT server URL")
	ErrInvalidScheme    = errors.New("MQTT server URL must use mqtt:// scheme")
	ErrNotConnected     = errors.New("MQTT client is not connected")
	ErrPublishFailed    = errors.New("failed to publish MQTT message")
)
