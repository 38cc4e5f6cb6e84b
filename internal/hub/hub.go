// internal/hub/hub.go
// The Hub owns the presence registry and routes events between connected
// clients and external collaborators.
package hub

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/collabdrive/realtime/internal/auth"
	"github.com/collabdrive/realtime/internal/logger"
	"github.com/collabdrive/realtime/internal/metrics"
	"github.com/collabdrive/realtime/internal/presence"
)

const (
	defaultIdleTimeout = 60 * time.Second
	defaultSweepPeriod = 30 * time.Second
	defaultAuthWindow  = 10 * time.Second
)

// Options configure hub timing. Zero values fall back to defaults.
type Options struct {
	IdleTimeout time.Duration
	SweepPeriod time.Duration
	AuthWindow  time.Duration
}

// Hub manages authenticated client connections and event fan-out.
type Hub struct {
	registry *presence.Registry
	verifier auth.Verifier
	natsConn *nats.Conn // nil when running without the external bridge
	logger   *logger.Logger

	idleTimeout time.Duration
	sweepPeriod time.Duration
	authWindow  time.Duration
}

func New(verifier auth.Verifier, nc *nats.Conn, opts Options) *Hub {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.SweepPeriod <= 0 {
		opts.SweepPeriod = defaultSweepPeriod
	}
	if opts.AuthWindow <= 0 {
		opts.AuthWindow = defaultAuthWindow
	}
	return &Hub{
		registry:    presence.NewRegistry(),
		verifier:    verifier,
		natsConn:    nc,
		logger:      logger.New("hub"),
		idleTimeout: opts.IdleTimeout,
		sweepPeriod: opts.SweepPeriod,
		authWindow:  opts.AuthWindow,
	}
}

// Run drives the liveness sweeper. It blocks; call it in its own goroutine.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.sweepPeriod)
	defer ticker.Stop()
	for range ticker.C {
		h.sweepOnce(time.Now())
	}
}

// sweepOnce evicts every connection whose last activity is older than the
// idle timeout, measured against now.
func (h *Hub) sweepOnce(now time.Time) {
	for _, ev := range h.registry.Evict(now.Add(-h.idleTimeout)) {
		ev.Channel.Close()
		metrics.RecordEviction()
		metrics.ConnectionClosed()
		h.logger.WithFields(map[string]interface{}{
			"identity":      ev.Info.Identity,
			"last_activity": ev.Info.LastActivity,
		}).Info("evicted inactive connection")
		h.PublishToAll(userLeftEvent(ev.Info.Identity, ev.Info.DisplayName), ev.Info.Identity)
		h.mirrorPresence(subjectPresenceLeft, ev.Info.Identity, ev.Info.DisplayName)
	}
}

// disconnect tears down a client connection. Safe to call more than once
// for the same client; only the first call for a still-registered identity
// publishes user_left.
func (h *Hub) disconnect(c *Client) {
	c.Close()

	identity, displayName, authed := c.session()
	if !authed {
		return
	}
	if _, ok := h.registry.Remove(identity, c); !ok {
		// Already swept, or this connection was replaced by a newer
		// handshake for the same identity.
		return
	}
	metrics.ConnectionClosed()
	h.logger.Infof("client disconnected: %s", identity)
	h.PublishToAll(userLeftEvent(identity, displayName), identity)
	h.mirrorPresence(subjectPresenceLeft, identity, displayName)
}

// ConnectionCount returns the number of authenticated connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Len()
}
