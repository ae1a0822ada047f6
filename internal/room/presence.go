package room

import (
	"sync"
	"time"
)

const (
	defaultPresenceName  = "Invitado"
	defaultPresenceColor = "#4f46e5"
)

// UserInfo is the client-supplied identity carried in a join request.
type UserInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PresenceEntry is what other room members see about a connection.
type PresenceEntry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joinedAt"`
}

type workspacePresence struct {
	order   []string // insertion order of connection ids
	entries map[string]PresenceEntry
}

// PresenceRegistry holds ephemeral per-workspace presence. Workspaces are
// created lazily on first access; empty ones are kept around, bounded by the
// number of distinct workspace names joined during the process lifetime.
type PresenceRegistry struct {
	mu         sync.RWMutex
	workspaces map[string]*workspacePresence
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{workspaces: make(map[string]*workspacePresence)}
}

func (p *PresenceRegistry) ensure(workspaceName string) *workspacePresence {
	wp, ok := p.workspaces[workspaceName]
	if !ok {
		wp = &workspacePresence{entries: make(map[string]PresenceEntry)}
		p.workspaces[workspaceName] = wp
	}
	return wp
}

// Set upserts the entry for the connection. A re-join refreshes the metadata
// and JoinedAt without registering the connection twice.
func (p *PresenceRegistry) Set(workspaceName, connID string, user UserInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := PresenceEntry{
		ID:       connID,
		Name:     user.Name,
		Color:    user.Color,
		JoinedAt: time.Now().UTC(),
	}
	if entry.Name == "" {
		entry.Name = defaultPresenceName
	}
	if entry.Color == "" {
		entry.Color = defaultPresenceColor
	}

	wp := p.ensure(workspaceName)
	if _, exists := wp.entries[connID]; !exists {
		wp.order = append(wp.order, connID)
	}
	wp.entries[connID] = entry
}

// Remove deletes the entry if present, else no-op.
func (p *PresenceRegistry) Remove(workspaceName, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	wp := p.ensure(workspaceName)
	if _, exists := wp.entries[connID]; !exists {
		return
	}
	delete(wp.entries, connID)
	for i, id := range wp.order {
		if id == connID {
			wp.order = append(wp.order[:i], wp.order[i+1:]...)
			break
		}
	}
}

// List returns the workspace's entries in insertion order.
func (p *PresenceRegistry) List(workspaceName string) []PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	wp := p.ensure(workspaceName)
	out := make([]PresenceEntry, 0, len(wp.order))
	for _, id := range wp.order {
		out = append(out, wp.entries[id])
	}
	return out
}
