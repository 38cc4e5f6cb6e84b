// internal/hub/router.go
// Fire-and-forget event fan-out. Unreachable recipients are dropped
// silently; a failed delivery never surfaces to the publisher.
package hub

import (
	"encoding/json"

	"github.com/collabdrive/realtime/internal/metrics"
	"github.com/collabdrive/realtime/internal/presence"
)

// PublishToAll delivers event to every registered connection except the
// excluded identity (ignored if empty).
func (h *Hub) PublishToAll(event map[string]interface{}, excluding string) {
	data, ok := h.marshal(event)
	if !ok {
		return
	}
	targets := h.registry.Channels(excluding)
	for _, ch := range targets {
		ch.Send(data)
	}
	metrics.RecordDelivery(eventType(event), len(targets))
}

// PublishToFolder delivers event to every viewer of folder except the
// excluded identity (ignored if empty). External collaborators call this
// after their own state change has committed.
func (h *Hub) PublishToFolder(folder string, event map[string]interface{}, excluding string) {
	data, ok := h.marshal(event)
	if !ok {
		return
	}
	targets := h.registry.ViewerChannels(folder, excluding)
	for _, ch := range targets {
		ch.Send(data)
	}
	metrics.RecordDelivery(eventType(event), len(targets))
}

// PublishToUser delivers event to the identity's connection if present.
// Offline identities drop the event; callers needing guaranteed delivery
// must persist it themselves.
func (h *Hub) PublishToUser(identity string, event map[string]interface{}) {
	data, ok := h.marshal(event)
	if !ok {
		return
	}
	ch, found := h.registry.ChannelOf(identity)
	if !found {
		return
	}
	ch.Send(data)
	metrics.RecordDelivery(eventType(event), 1)
}

// sendTo marshals event and delivers it directly to one channel.
func (h *Hub) sendTo(ch presence.Channel, event map[string]interface{}) {
	data, ok := h.marshal(event)
	if !ok {
		return
	}
	ch.Send(data)
	metrics.RecordDelivery(eventType(event), 1)
}

func (h *Hub) marshal(event map[string]interface{}) ([]byte, bool) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("marshal %s event: %v", eventType(event), err)
		return nil, false
	}
	return data, true
}

func eventType(event map[string]interface{}) string {
	t, _ := event["type"].(string)
	return t
}
