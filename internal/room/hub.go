package room

import (
	"sync"

	"go.uber.org/zap"
)

// Conn is the transport-side handle the engine fans events out to. The ws
// package implements it over a websocket; tests use in-memory fakes.
type Conn interface {
	ID() string
	Send(payload []byte) error
}

// Hub keeps the member set of every workspace room plus the reverse index
// (connection -> rooms) used by disconnect cleanup. Both indexes are mutated
// under one lock so they can never disagree.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]Conn     // workspace name -> connID -> conn
	joined map[string]map[string]struct{} // connID -> workspace names
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[string]Conn),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join is idempotent: re-joining a room the connection already belongs to
// replaces the stored handle and registers nothing twice.
func (h *Hub) Join(workspaceName string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[workspaceName]
	if !ok {
		r = make(map[string]Conn)
		h.rooms[workspaceName] = r
	}
	r[c.ID()] = c

	j, ok := h.joined[c.ID()]
	if !ok {
		j = make(map[string]struct{})
		h.joined[c.ID()] = j
	}
	j[workspaceName] = struct{}{}
}

// Leave is a no-op for non-members.
func (h *Hub) Leave(workspaceName, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r, ok := h.rooms[workspaceName]; ok {
		delete(r, connID)
		if len(r) == 0 {
			delete(h.rooms, workspaceName)
		}
	}
	if j, ok := h.joined[connID]; ok {
		delete(j, workspaceName)
		if len(j) == 0 {
			delete(h.joined, connID)
		}
	}
}

// RoomsOf lists the workspaces the connection is currently a member of.
func (h *Hub) RoomsOf(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.joined[connID]))
	for name := range h.joined[connID] {
		names = append(names, name)
	}
	return names
}

// Broadcast sends the payload to every current member of the room. The member
// set is snapshotted first so the I/O happens outside the lock. Delivery is
// best-effort: a failed write is logged and the connection's own reader loop
// handles its cleanup.
func (h *Hub) Broadcast(workspaceName string, payload []byte) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.rooms[workspaceName]))
	for _, c := range h.rooms[workspaceName] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.Send(payload); err != nil {
			zap.L().Debug("room.broadcast_write",
				zap.String("workspace", workspaceName),
				zap.String("conn", c.ID()),
				zap.Error(err))
		}
	}
}
