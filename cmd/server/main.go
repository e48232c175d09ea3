package main

import (
	"log"

	"ledgerd/internal/pkg/components"
	"ledgerd/internal/pkg/logging"
)

func main() {
	container, err := components.New()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	logging.Info("ledgerd initialized successfully", map[string]interface{}{
		"host": container.Config.Server.Host,
		"port": container.Config.Server.Port,
	})

	if err := container.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
