// Command avallon starts the website builder API server.
// Usage: go run ./cmd/avallon [config.yaml]
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/avallon-labs/avallon/internal/config"
	"github.com/avallon-labs/avallon/internal/interfaces"
	"github.com/avallon-labs/avallon/internal/logging"
	"github.com/avallon-labs/avallon/internal/server"
)

func main() {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Loading configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.NewStdoutLogger("Avallon")

	srv, err := server.NewServer(server.Config{
		ListenAddr: cfg.ListenAddr,
		AppConfig:  cfg,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("Starting server: %v", err)
	}
	defer srv.Close()

	logger.Info("listening", interfaces.Field{Key: "addr", Value: cfg.ListenAddr})
	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
