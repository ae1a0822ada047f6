package ws

import (
	"encoding/json"

	"taskroomgo/internal/room"
	"taskroomgo/internal/services/task"
)

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "room:join"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request bodies ─────────────────────────────────

// JoinBody is the body for "room:join".
type JoinBody struct {
	WorkspaceID string        `json:"workspaceId"`
	Secret      string        `json:"secret"`
	User        room.UserInfo `json:"user"`
}

// CreateTaskBody is the body for "task:create".
type CreateTaskBody struct {
	WorkspaceID string         `json:"workspaceId"`
	Task        task.TaskDraft `json:"task"`
}

// UpdateTaskBody is the body for "task:update".
type UpdateTaskBody struct {
	WorkspaceID string         `json:"workspaceId"`
	ID          string         `json:"id"`
	Updates     task.TaskPatch `json:"updates"`
}

// DeleteTaskBody is the body for "task:delete".
type DeleteTaskBody struct {
	WorkspaceID string `json:"workspaceId"`
	ID          string `json:"id"`
}

// ErrorBody is sent to the originator as "room:error".
type ErrorBody struct {
	Error string `json:"error"`
}
