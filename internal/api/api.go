// internal/api/api.go
// HTTP server wiring: the WebSocket endpoint, health, and metrics.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/collabdrive/realtime/internal/auth"
	"github.com/collabdrive/realtime/internal/config"
	"github.com/collabdrive/realtime/internal/hub"
	"github.com/collabdrive/realtime/internal/logger"
)

// StartServer connects to NATS (optional), builds the hub, and serves HTTP.
// Blocks until the listener fails.
func StartServer(cfg config.Config, serverLogger *logger.Logger) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("session token secret is required (set HUB_JWT_SECRET)")
	}

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		serverLogger.Infof("connecting to NATS at %s", cfg.NATSURL)
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			serverLogger.Errorf("NATS connection failed: %v", err)
			serverLogger.Warn("running without NATS; external event bridge disabled")
		} else {
			nc = conn
			serverLogger.Info("connected to NATS")
		}
	} else {
		serverLogger.Warn("NATS_URL not set; external event bridge disabled")
	}

	h := hub.New(auth.NewJWTVerifier(cfg.JWTSecret), nc, hub.Options{
		IdleTimeout: cfg.IdleTimeout(),
		SweepPeriod: cfg.SweepPeriod(),
		AuthWindow:  cfg.AuthWindow(),
	})
	if err := h.StartBridge(); err != nil {
		return fmt.Errorf("start NATS bridge: %w", err)
	}
	go h.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWs)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		natsStatus := "disabled"
		if nc != nil {
			natsStatus = "disconnected"
			if nc.Status() == nats.CONNECTED {
				natsStatus = "connected"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "ok",
			"nats":        natsStatus,
			"connections": h.ConnectionCount(),
		})
	})

	serverLogger.Infof("server started at %s", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, mux)
}
