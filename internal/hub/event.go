// internal/hub/event.go
// Wire-format messages. Inbound frames are a tagged union keyed by "type";
// outbound events are built as maps and marshaled once per fan-out.
package hub

import (
	"time"

	"github.com/collabdrive/realtime/internal/presence"
)

// clientMessage is an inbound frame from a client.
type clientMessage struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	FolderID  string `json:"folderId,omitempty"`
	Operation string `json:"operation,omitempty"`
	Item      string `json:"item,omitempty"`
	Action    string `json:"action,omitempty"`
}

func connectedEvent(identity, displayName string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "connected",
		"identity":    identity,
		"displayName": displayName,
	}
}

func errorEvent(message string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "error",
		"message": message,
	}
}

func activeUsersEvent(users []presence.Info) map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		list = append(list, map[string]interface{}{
			"identity":     u.Identity,
			"displayName":  u.DisplayName,
			"folderId":     u.Folder,
			"lastActivity": u.LastActivity.Unix(),
		})
	}
	return map[string]interface{}{
		"type":  "active_users",
		"users": list,
	}
}

func userJoinedEvent(identity, displayName string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "user_joined",
		"identity":    identity,
		"displayName": displayName,
		"timestamp":   time.Now().Unix(),
	}
}

func userLeftEvent(identity, displayName string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "user_left",
		"identity":    identity,
		"displayName": displayName,
		"timestamp":   time.Now().Unix(),
	}
}

func folderViewersEvent(folder string, viewers []presence.Info) map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(viewers))
	for _, v := range viewers {
		list = append(list, map[string]interface{}{
			"identity":    v.Identity,
			"displayName": v.DisplayName,
		})
	}
	return map[string]interface{}{
		"type":     "folder_viewers",
		"folderId": folder,
		"viewers":  list,
	}
}

func userViewingEvent(identity, displayName, folder string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "user_viewing",
		"identity":    identity,
		"displayName": displayName,
		"folderId":    folder,
		"timestamp":   time.Now().Unix(),
	}
}

func fileChangedEvent(operation, item, folder, identity, displayName string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "file_changed",
		"operation":   operation,
		"item":        item,
		"folderId":    folder,
		"identity":    identity,
		"displayName": displayName,
		"timestamp":   time.Now().Unix(),
	}
}

func userTypingEvent(identity, displayName, folder, action string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "user_typing",
		"identity":    identity,
		"displayName": displayName,
		"folderId":    folder,
		"action":      action,
		"timestamp":   time.Now().Unix(),
	}
}

func pongEvent() map[string]interface{} {
	return map[string]interface{}{
		"type": "pong",
	}
}
