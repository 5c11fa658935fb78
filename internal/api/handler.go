package api

import (
	"fmt"

	"github.com/larsks/dronevision/internal/cli"
	"github.com/larsks/dronevision/internal/httpserver"
)

// APIHandler implements cli.CommandHandler for the API server
type APIHandler struct{}

// NewAPIHandler creates a new API command handler
func NewAPIHandler() *APIHandler {
	return &APIHandler{}
}

// Start runs the API server until it is signalled, then closes every
// session.
func (h *APIHandler) Start(config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("invalid config type for API server")
	}

	srv, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := httpserver.StartFromConfig(cfg, srv, srv.Close); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
