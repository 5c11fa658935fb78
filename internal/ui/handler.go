package ui

import (
	"fmt"
	"log"

	"github.com/larsks/dronevision/internal/cli"
	"github.com/larsks/dronevision/internal/httpserver"
)

// UIHandler implements cli.CommandHandler for the UI server
type UIHandler struct{}

// NewUIHandler creates a new UI command handler
func NewUIHandler() *UIHandler {
	return &UIHandler{}
}

// Start starts the UI server with the given configuration
func (h *UIHandler) Start(config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfig, config)
	}

	srv := NewUIServer(cfg, true)
	log.Printf("API URL: %s", cfg.APIBaseURL)
	return httpserver.StartFromConfig(cfg, srv)
}

// GetListenAddress implements httpserver.Config interface
func (c *Config) GetListenAddress() string {
	return c.ListenAddress
}

// GetListenPort implements httpserver.Config interface
func (c *Config) GetListenPort() int {
	return c.ListenPort
}
