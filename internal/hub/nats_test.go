package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectTail(t *testing.T) {
	assert.Equal(t, "f1", subjectTail("files.changed.f1"))
	assert.Equal(t, "u1", subjectTail("users.notify.u1"))
	assert.Equal(t, "", subjectTail("files.changed."))
	assert.Equal(t, "", subjectTail("nodots"))
}

func TestDecodePayload(t *testing.T) {
	event := decodePayload([]byte(`{"operation":"delete","item":"a.txt"}`))
	assert.Equal(t, "delete", event["operation"])

	// Malformed and null payloads come back as empty, usable events.
	assert.NotNil(t, decodePayload([]byte(`{broken`)))
	assert.NotNil(t, decodePayload([]byte(`null`)))
	assert.NotNil(t, decodePayload(nil))
}

func TestBridgeWithoutNATSIsNoop(t *testing.T) {
	h := newTestHub()
	assert.NoError(t, h.StartBridge())
	h.mirrorPresence(subjectPresenceJoined, "u1", "Alice")
}
