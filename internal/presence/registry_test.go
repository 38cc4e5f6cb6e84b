package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel is a transport stand-in that records what happened to it.
type fakeChannel struct {
	sent   [][]byte
	closed bool
}

func (f *fakeChannel) Send(data []byte) { f.sent = append(f.sent, data) }
func (f *fakeChannel) Close()           { f.closed = true }

func identities(infos []Info) []string {
	out := make([]string, 0, len(infos))
	for _, i := range infos {
		out = append(out, i.Identity)
	}
	return out
}

func TestRegisterAndSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "Alice", &fakeChannel{})
	r.Register("u2", "Bob", &fakeChannel{})

	assert.Equal(t, 2, r.Len())
	assert.ElementsMatch(t, []string{"u2"}, identities(r.Snapshot("u1")))
	assert.ElementsMatch(t, []string{"u1", "u2"}, identities(r.Snapshot("")))
}

func TestRegisterReplacesExistingEntry(t *testing.T) {
	r := NewRegistry()
	first := &fakeChannel{}
	second := &fakeChannel{}

	replaced := r.Register("u1", "Alice", first)
	assert.Nil(t, replaced)
	require.True(t, r.Navigate("u1", "f1"))

	replaced = r.Register("u1", "Alice", second)
	assert.Same(t, first, replaced)
	assert.Equal(t, 1, r.Len())
	// Replacement clears the old entry's viewer-index membership.
	assert.Empty(t, r.ViewersOf("f1", ""))

	ch, ok := r.ChannelOf("u1")
	require.True(t, ok)
	assert.Same(t, second, ch)
}

func TestNavigateMovesViewer(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "Alice", &fakeChannel{})

	require.True(t, r.Navigate("u1", "f1"))
	assert.ElementsMatch(t, []string{"u1"}, identities(r.ViewersOf("f1", "")))

	require.True(t, r.Navigate("u1", "f2"))
	assert.Empty(t, r.ViewersOf("f1", ""))
	assert.ElementsMatch(t, []string{"u1"}, identities(r.ViewersOf("f2", "")))
}

func TestNavigateUnregisteredIdentity(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Navigate("ghost", "f1"))
	assert.Empty(t, r.ViewersOf("f1", ""))
}

func TestViewersOfExcluding(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "Alice", &fakeChannel{})
	r.Register("u2", "Bob", &fakeChannel{})
	require.True(t, r.Navigate("u1", "f1"))
	require.True(t, r.Navigate("u2", "f1"))

	assert.ElementsMatch(t, []string{"u2"}, identities(r.ViewersOf("f1", "u1")))
	assert.Len(t, r.ViewerChannels("f1", "u1"), 1)
}

func TestRemoveClearsViewerMembership(t *testing.T) {
	r := NewRegistry()
	ch := &fakeChannel{}
	r.Register("u1", "Alice", ch)
	require.True(t, r.Navigate("u1", "f1"))

	info, ok := r.Remove("u1", ch)
	require.True(t, ok)
	assert.Equal(t, "u1", info.Identity)
	assert.Equal(t, "f1", info.Folder)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.ViewersOf("f1", ""))
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	ch := &fakeChannel{}
	r.Register("u1", "Alice", ch)

	_, ok := r.Remove("u1", ch)
	require.True(t, ok)
	_, ok = r.Remove("u1", ch)
	assert.False(t, ok)
}

func TestRemoveIgnoresStaleChannel(t *testing.T) {
	r := NewRegistry()
	first := &fakeChannel{}
	second := &fakeChannel{}
	r.Register("u1", "Alice", first)
	r.Register("u1", "Alice", second)

	// Teardown of the replaced connection must not evict the successor.
	_, ok := r.Remove("u1", first)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestTouchUpdatesActivity(t *testing.T) {
	r := NewRegistry()
	r.Register("u1", "Alice", &fakeChannel{})
	before := r.Snapshot("")[0].LastActivity

	time.Sleep(5 * time.Millisecond)
	r.Touch("u1")
	after := r.Snapshot("")[0].LastActivity
	assert.True(t, after.After(before))

	// Touching an unknown identity is a no-op.
	r.Touch("ghost")
}

func TestEvict(t *testing.T) {
	r := NewRegistry()
	ch := &fakeChannel{}
	r.Register("u1", "Alice", ch)
	require.True(t, r.Navigate("u1", "f1"))
	r.Register("u2", "Bob", &fakeChannel{})

	// Nothing is older than a cutoff in the past.
	assert.Empty(t, r.Evict(time.Now().Add(-time.Minute)))

	// A cutoff after the registration instant expires u1 and u2 alike.
	evicted := r.Evict(time.Now().Add(time.Second))
	assert.Len(t, evicted, 2)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.ViewersOf("f1", ""))
}
