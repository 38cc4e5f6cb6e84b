// internal/hub/messaging.go
// Inbound message dispatch: the handshake state machine and the
// authenticated message handlers.
package hub

import (
	"encoding/json"

	"github.com/collabdrive/realtime/internal/metrics"
	"github.com/collabdrive/realtime/internal/presence"
)

// handleMessage processes one inbound frame. Any frame counts as activity
// for an authenticated connection.
func (h *Hub) handleMessage(c *Client, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendTo(c, errorEvent("invalid message format"))
		if !c.isAuthed() {
			c.Close()
		}
		return
	}

	if !c.isAuthed() {
		if msg.Type != "auth" {
			h.sendTo(c, errorEvent("authentication required"))
			c.Close()
			return
		}
		h.handleAuth(c, msg)
		return
	}

	identity, _, _ := c.session()
	if ch, ok := h.registry.ChannelOf(identity); !ok || ch != presence.Channel(c) {
		// The registry no longer maps this identity to this connection:
		// it was swept or replaced by a newer handshake mid-read. Drop
		// the frame so a stale transport cannot mutate its successor.
		return
	}
	h.registry.Touch(identity)

	switch msg.Type {
	case "auth":
		h.sendTo(c, errorEvent("already authenticated"))
	case "navigate_folder":
		h.handleNavigate(c, msg)
	case "file_operation":
		h.handleFileOperation(c, msg)
	case "typing":
		h.handleTyping(c, msg)
	case "ping":
		h.sendTo(c, pongEvent())
	default:
		h.sendTo(c, errorEvent("unknown message type"))
	}
}

func (h *Hub) handleAuth(c *Client, msg clientMessage) {
	claims, err := h.verifier.Verify(msg.Token)
	if err != nil {
		metrics.RecordAuthAttempt(false)
		h.logger.Warnf("authentication failed: %v", err)
		h.sendTo(c, errorEvent("authentication failed"))
		c.Close()
		return
	}

	c.setSession(claims.Identity, claims.DisplayName)
	replaced := h.registry.Register(claims.Identity, claims.DisplayName, c)
	if replaced != nil {
		// Second handshake for the same identity supersedes the first;
		// the stale transport is closed rather than left to time out.
		h.logger.Infof("replacing existing connection for %s", claims.Identity)
		replaced.Close()
	} else {
		metrics.ConnectionOpened()
	}
	metrics.RecordAuthAttempt(true)
	h.logger.WithFields(map[string]interface{}{
		"identity":     claims.Identity,
		"display_name": claims.DisplayName,
	}).Info("client authenticated")

	h.sendTo(c, connectedEvent(claims.Identity, claims.DisplayName))
	h.sendTo(c, activeUsersEvent(h.registry.Snapshot(claims.Identity)))
	h.PublishToAll(userJoinedEvent(claims.Identity, claims.DisplayName), claims.Identity)
	h.mirrorPresence(subjectPresenceJoined, claims.Identity, claims.DisplayName)
}

func (h *Hub) handleNavigate(c *Client, msg clientMessage) {
	identity, displayName, _ := c.session()
	folder := folderOrRoot(msg.FolderID)

	if !h.registry.Navigate(identity, folder) {
		// The registry is only ever driven by this hub, so a missing
		// identity here is an internal inconsistency, not a client error.
		h.logger.Errorf("navigate for unregistered identity %s", identity)
		return
	}

	h.PublishToFolder(folder, userViewingEvent(identity, displayName, folder), identity)
	h.sendTo(c, folderViewersEvent(folder, h.registry.ViewersOf(folder, identity)))
}

func (h *Hub) handleFileOperation(c *Client, msg clientMessage) {
	identity, displayName, _ := c.session()
	folder := folderOrRoot(msg.FolderID)
	h.PublishToFolder(folder, fileChangedEvent(msg.Operation, msg.Item, folder, identity, displayName), identity)
}

func (h *Hub) handleTyping(c *Client, msg clientMessage) {
	identity, displayName, _ := c.session()
	folder := folderOrRoot(msg.FolderID)
	h.PublishToFolder(folder, userTypingEvent(identity, displayName, folder, msg.Action), identity)
}

func folderOrRoot(folder string) string {
	if folder == "" {
		return presence.RootFolder
	}
	return folder
}
