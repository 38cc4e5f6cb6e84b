// main.go
// Application entry point: loads configuration, initializes logging, and
// starts the hub server.
package main

import (
	"fmt"
	"os"

	"github.com/collabdrive/realtime/internal/api"
	"github.com/collabdrive/realtime/internal/config"
	"github.com/collabdrive/realtime/internal/logger"
)

func main() {
	cfg, err := config.Load("hub_config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log)
	serverLogger := logger.New("server")
	serverLogger.WithFields(map[string]interface{}{
		"level":        cfg.Log.Level,
		"log_to_file":  cfg.Log.LogToFile,
		"idle_timeout": cfg.IdleTimeout().String(),
		"sweep_period": cfg.SweepPeriod().String(),
		"auth_window":  cfg.AuthWindow().String(),
	}).Info("configuration loaded")

	if err := api.StartServer(cfg, serverLogger); err != nil {
		serverLogger.Fatalf("server: %v", err)
	}
}
