// internal/hub/nats.go
// External collaborator bridge. CRUD and notification services publish to
// NATS after their own writes commit; the hub routes those events to the
// right connections. Presence lifecycle is mirrored outbound for anyone
// who cares to listen. Everything here is best-effort: the hub persists
// nothing and running without NATS only disables the bridge.
package hub

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	subjectFileChanged    = "files.changed.*"
	subjectUserNotify     = "users.notify.*"
	subjectUserUnread     = "users.unread.*"
	subjectPresenceJoined = "presence.joined"
	subjectPresenceLeft   = "presence.left"
)

// StartBridge subscribes to the external collaborator subjects. No-op when
// the hub runs without a NATS connection.
func (h *Hub) StartBridge() error {
	if h.natsConn == nil {
		return nil
	}
	subs := []struct {
		subject string
		handler nats.MsgHandler
	}{
		{subjectFileChanged, h.onFileChanged},
		{subjectUserNotify, h.onUserNotify},
		{subjectUserUnread, h.onUserUnread},
	}
	for _, s := range subs {
		if _, err := h.natsConn.Subscribe(s.subject, s.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", s.subject, err)
		}
	}
	h.logger.Info("NATS bridge subscribed")
	return nil
}

func (h *Hub) onFileChanged(m *nats.Msg) {
	folder := subjectTail(m.Subject)
	if folder == "" {
		return
	}
	event := decodePayload(m.Data)
	event["type"] = "file_changed"
	event["folderId"] = folder
	if _, ok := event["timestamp"]; !ok {
		event["timestamp"] = time.Now().Unix()
	}
	h.PublishToFolder(folder, event, "")
}

func (h *Hub) onUserNotify(m *nats.Msg) {
	identity := subjectTail(m.Subject)
	if identity == "" {
		return
	}
	event := decodePayload(m.Data)
	event["type"] = "notification"
	h.PublishToUser(identity, event)
}

func (h *Hub) onUserUnread(m *nats.Msg) {
	identity := subjectTail(m.Subject)
	if identity == "" {
		return
	}
	event := decodePayload(m.Data)
	event["type"] = "unread_count"
	h.PublishToUser(identity, event)
}

// mirrorPresence publishes a presence lifecycle event outbound,
// fire-and-forget.
func (h *Hub) mirrorPresence(subject, identity, displayName string) {
	if h.natsConn == nil {
		return
	}
	data, err := json.Marshal(map[string]interface{}{
		"identity":    identity,
		"displayName": displayName,
		"timestamp":   time.Now().Unix(),
	})
	if err != nil {
		return
	}
	if err := h.natsConn.Publish(subject, data); err != nil {
		h.logger.Errorf("publish %s: %v", subject, err)
	}
}

// subjectTail returns the token after the last dot, or "" when the subject
// has no tail.
func subjectTail(subject string) string {
	i := strings.LastIndex(subject, ".")
	if i < 0 || i == len(subject)-1 {
		return ""
	}
	return subject[i+1:]
}

// decodePayload unmarshals a bridge payload, tolerating malformed input by
// starting from an empty event.
func decodePayload(data []byte) map[string]interface{} {
	event := make(map[string]interface{})
	if len(data) > 0 {
		if err := json.Unmarshal(data, &event); err != nil || event == nil {
			event = make(map[string]interface{})
		}
	}
	return event
}
