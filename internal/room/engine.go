package room

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"taskroomgo/internal/services/task"
)

// Outbound event names.
const (
	EventRoomError      = "room:error"
	EventPresenceUpdate = "presence:update"
	EventTasksSync      = "tasks:sync"
	EventTaskCreated    = "tasks:created"
	EventTaskUpdated    = "tasks:updated"
	EventTaskDeleted    = "tasks:deleted"
)

// Publisher relays a room event to other instances. Optional; a nil publisher
// keeps fan-out local to this process.
type Publisher interface {
	Publish(ctx context.Context, workspaceName, event string, payload []byte) error
}

// Engine coordinates room membership, presence and task fan-out. Membership
// and presence mutations are serialized under one mutex so a single
// connection's join or cleanup pass is atomic with respect to broadcasts.
type Engine struct {
	mu       sync.Mutex
	hub      *Hub
	presence *PresenceRegistry
	gate     *Gate
	tasks    task.ITaskService
	relay    Publisher
}

func NewEngine(hub *Hub, presence *PresenceRegistry, gate *Gate, tasks task.ITaskService, relay Publisher) *Engine {
	return &Engine{
		hub:      hub,
		presence: presence,
		gate:     gate,
		tasks:    tasks,
		relay:    relay,
	}
}

// Join runs the admission flow: credential check, room membership, presence
// registration, presence broadcast to the room and a task snapshot to the
// joining connection only. A failed credential check leaves no state behind.
func (e *Engine) Join(ctx context.Context, conn Conn, workspaceName, secret string, user UserInfo) error {
	if workspaceName == "" {
		return nil
	}
	if err := e.gate.Verify(ctx, workspaceName, secret); err != nil {
		return err
	}

	e.mu.Lock()
	e.hub.Join(workspaceName, conn)
	e.presence.Set(workspaceName, conn.ID(), user)
	entries := e.presence.List(workspaceName)
	e.mu.Unlock()

	e.broadcastLocal(workspaceName, EventPresenceUpdate, entries)

	tasks, err := e.tasks.List(ctx, workspaceName)
	if err != nil {
		zap.L().Error("engine.join_list_tasks", zap.String("workspace", workspaceName), zap.Error(err))
		return ErrJoinFailed
	}
	e.sendTo(conn, EventTasksSync, tasks)
	return nil
}

// CreateTask applies defaults via the task service and fans the created entity
// out to the whole room, originator included.
func (e *Engine) CreateTask(ctx context.Context, workspaceName string, draft task.TaskDraft) error {
	if workspaceName == "" {
		return nil
	}
	created, err := e.tasks.Create(ctx, workspaceName, draft)
	if err != nil {
		zap.L().Error("engine.create_task", zap.String("workspace", workspaceName), zap.Error(err))
		return ErrInternal
	}
	if created == nil {
		return nil // workspace missing: no broadcast
	}
	e.broadcast(ctx, workspaceName, EventTaskCreated, created)
	return nil
}

// UpdateTask mutates only the supplied fields. A task owned by another
// workspace is treated as not found and nothing is broadcast anywhere.
func (e *Engine) UpdateTask(ctx context.Context, workspaceName, id string, patch task.TaskPatch) error {
	if workspaceName == "" {
		return nil
	}
	updated, err := e.tasks.Update(ctx, workspaceName, id, patch)
	if err != nil {
		zap.L().Error("engine.update_task", zap.String("workspace", workspaceName), zap.String("task", id), zap.Error(err))
		return ErrInternal
	}
	if updated == nil {
		return nil
	}
	e.broadcast(ctx, workspaceName, EventTaskUpdated, updated)
	return nil
}

// DeleteTask removes the task and broadcasts its last known state.
func (e *Engine) DeleteTask(ctx context.Context, workspaceName, id string) error {
	if workspaceName == "" {
		return nil
	}
	removed, err := e.tasks.Delete(ctx, workspaceName, id)
	if err != nil {
		zap.L().Error("engine.delete_task", zap.String("workspace", workspaceName), zap.String("task", id), zap.Error(err))
		return ErrInternal
	}
	if removed == nil {
		return nil
	}
	e.broadcast(ctx, workspaceName, EventTaskDeleted, removed)
	return nil
}

// Disconnect removes the connection's presence from every room it belonged to
// and re-broadcasts each room's presence list to the remaining members.
// Calling it again for the same connection is a no-op.
func (e *Engine) Disconnect(conn Conn) {
	e.mu.Lock()
	rooms := e.hub.RoomsOf(conn.ID())
	updates := make(map[string][]PresenceEntry, len(rooms))
	for _, name := range rooms {
		e.presence.Remove(name, conn.ID())
		e.hub.Leave(name, conn.ID())
		updates[name] = e.presence.List(name)
	}
	e.mu.Unlock()

	for name, entries := range updates {
		e.broadcastLocal(name, EventPresenceUpdate, entries)
	}
}

// broadcast fans a task event out locally and, when a relay is wired, to the
// other instances. Relay failures never block the local delivery.
func (e *Engine) broadcast(ctx context.Context, workspaceName, event string, body any) {
	payload, err := encodeEvent(event, body)
	if err != nil {
		zap.L().Error("engine.encode_event", zap.String("event", event), zap.Error(err))
		return
	}
	e.hub.Broadcast(workspaceName, payload)
	if e.relay != nil {
		if err := e.relay.Publish(ctx, workspaceName, event, payload); err != nil {
			zap.L().Warn("engine.relay_publish", zap.String("event", event), zap.Error(err))
		}
	}
}

// broadcastLocal skips the relay: presence is in-memory per instance.
func (e *Engine) broadcastLocal(workspaceName, event string, body any) {
	payload, err := encodeEvent(event, body)
	if err != nil {
		zap.L().Error("engine.encode_event", zap.String("event", event), zap.Error(err))
		return
	}
	e.hub.Broadcast(workspaceName, payload)
}

func (e *Engine) sendTo(conn Conn, event string, body any) {
	payload, err := encodeEvent(event, body)
	if err != nil {
		zap.L().Error("engine.encode_event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := conn.Send(payload); err != nil {
		zap.L().Debug("engine.send", zap.String("conn", conn.ID()), zap.String("event", event), zap.Error(err))
	}
}

type outboundEvent struct {
	Event string `json:"event"`
	Body  any    `json:"body"`
}

func encodeEvent(event string, body any) ([]byte, error) {
	return json.Marshal(outboundEvent{Event: event, Body: body})
}
