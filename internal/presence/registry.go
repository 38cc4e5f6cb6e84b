// Package presence tracks which identities hold a live connection and which
// folder each one is currently viewing. The connection registry and the
// folder viewer index are two views of the same state and are mutated
// together under a single lock, so no caller can observe an identity present
// in one but missing from the other.
package presence

import (
	"sync"
	"time"
)

// RootFolder is the sentinel folder id used when a client navigates to the
// workspace root.
const RootFolder = "root"

// Channel is the outbound delivery handle owned by a connection. Send must
// not block; Close force-closes the underlying transport.
type Channel interface {
	Send(data []byte)
	Close()
}

// Info is a read-only snapshot of one connection.
type Info struct {
	Identity     string
	DisplayName  string
	Folder       string
	LastActivity time.Time
}

// Eviction pairs a removed connection's snapshot with its channel so the
// caller can force the transport closed.
type Eviction struct {
	Info    Info
	Channel Channel
}

type connection struct {
	identity     string
	displayName  string
	channel      Channel
	folder       string // empty until the first navigate
	lastActivity time.Time
}

// Registry holds at most one connection per identity plus the derived
// folder viewer index.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]*connection
	viewers map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   make(map[string]*connection),
		viewers: make(map[string]map[string]struct{}),
	}
}

// Register inserts or replaces the entry for identity. When an entry is
// replaced its viewer-index membership is cleared in the same step, and the
// prior channel is returned so the caller can close it.
func (r *Registry) Register(identity, displayName string, ch Channel) (replaced Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.conns[identity]; ok {
		r.removeViewerLocked(old.folder, identity)
		replaced = old.channel
	}
	r.conns[identity] = &connection{
		identity:     identity,
		displayName:  displayName,
		channel:      ch,
		lastActivity: time.Now(),
	}
	return replaced
}

// Touch updates the identity's last-activity timestamp. No-op if the
// identity is not registered.
func (r *Registry) Touch(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[identity]; ok {
		c.lastActivity = time.Now()
	}
}

// Remove deletes the identity's entry and its viewer-index membership, but
// only if the registry still maps the identity to ch. The compare makes
// teardown idempotent and keeps a late teardown of a replaced connection
// from evicting its successor.
func (r *Registry) Remove(identity string, ch Channel) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[identity]
	if !ok || c.channel != ch {
		return Info{}, false
	}
	r.removeViewerLocked(c.folder, identity)
	delete(r.conns, identity)
	return c.info(), true
}

// Navigate atomically moves the identity from its current folder's viewer
// set into folder's set and updates the connection. Returns false if the
// identity is not registered.
func (r *Registry) Navigate(identity, folder string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[identity]
	if !ok {
		return false
	}
	if c.folder == folder {
		return true
	}
	r.removeViewerLocked(c.folder, identity)
	r.addViewerLocked(folder, identity)
	c.folder = folder
	return true
}

// ViewersOf returns the identities currently viewing folder, excluding the
// given identity if non-empty.
func (r *Registry) ViewersOf(folder, excluding string) []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.viewers[folder]
	out := make([]Info, 0, len(set))
	for identity := range set {
		if identity == excluding {
			continue
		}
		if c, ok := r.conns[identity]; ok {
			out = append(out, c.info())
		}
	}
	return out
}

// Snapshot returns all registered connections, excluding the given identity
// if non-empty.
func (r *Registry) Snapshot(excluding string) []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.conns))
	for identity, c := range r.conns {
		if identity == excluding {
			continue
		}
		out = append(out, c.info())
	}
	return out
}

// ChannelOf returns the channel for identity, if registered.
func (r *Registry) ChannelOf(identity string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.conns[identity]; ok {
		return c.channel, true
	}
	return nil, false
}

// Channels returns every registered channel, excluding the given identity
// if non-empty.
func (r *Registry) Channels(excluding string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Channel, 0, len(r.conns))
	for identity, c := range r.conns {
		if identity == excluding {
			continue
		}
		out = append(out, c.channel)
	}
	return out
}

// ViewerChannels returns the channels of folder's viewers, excluding the
// given identity if non-empty.
func (r *Registry) ViewerChannels(folder, excluding string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.viewers[folder]
	out := make([]Channel, 0, len(set))
	for identity := range set {
		if identity == excluding {
			continue
		}
		if c, ok := r.conns[identity]; ok {
			out = append(out, c.channel)
		}
	}
	return out
}

// Evict atomically removes every connection whose last activity is older
// than cutoff and returns them so the caller can close the transports.
func (r *Registry) Evict(cutoff time.Time) []Eviction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []Eviction
	for identity, c := range r.conns {
		if c.lastActivity.Before(cutoff) {
			r.removeViewerLocked(c.folder, identity)
			delete(r.conns, identity)
			evicted = append(evicted, Eviction{Info: c.info(), Channel: c.channel})
		}
	}
	return evicted
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) addViewerLocked(folder, identity string) {
	if folder == "" {
		return
	}
	set, ok := r.viewers[folder]
	if !ok {
		set = make(map[string]struct{})
		r.viewers[folder] = set
	}
	set[identity] = struct{}{}
}

func (r *Registry) removeViewerLocked(folder, identity string) {
	if folder == "" {
		return
	}
	set, ok := r.viewers[folder]
	if !ok {
		return
	}
	delete(set, identity)
	if len(set) == 0 {
		delete(r.viewers, folder)
	}
}

func (c *connection) info() Info {
	return Info{
		Identity:     c.identity,
		DisplayName:  c.displayName,
		Folder:       c.folder,
		LastActivity: c.lastActivity,
	}
}
