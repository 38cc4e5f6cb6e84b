package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientCloseIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)

	c.Close()
	c.Close()
	assert.True(t, c.isClosed())
}

func TestClientSendAfterCloseIsDropped(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)

	c.Close()
	c.Send([]byte(`{}`)) // must not panic on the closed channel
}

func TestClientSendOverflowClosesConnection(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)

	// Nothing drains c.send, so the buffer eventually fills and the
	// connection is treated as dead.
	for i := 0; i <= sendBufferSize; i++ {
		c.Send([]byte(`{}`))
	}
	assert.True(t, c.isClosed())
}

func TestClientSessionFixedAfterAuth(t *testing.T) {
	h := newTestHub()
	c := newClient(h, nil)

	assert.False(t, c.isAuthed())
	c.setSession("u1", "Alice")

	identity, displayName, authed := c.session()
	assert.True(t, authed)
	assert.Equal(t, "u1", identity)
	assert.Equal(t, "Alice", displayName)
}
