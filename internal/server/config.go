package server

import (
	"github.com/avallon-labs/avallon/internal/config"
	"github.com/avallon-labs/avallon/internal/generate"
	"github.com/avallon-labs/avallon/internal/interfaces"
)

// Config wires the server to its runtime configuration.
type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AppConfig carries storage, generation and screenshot settings.
	AppConfig *config.Config

	Logger interfaces.Logger

	// Provider overrides the configured generation provider. Tests use this
	// to substitute a canned implementation.
	Provider generate.Provider
}
