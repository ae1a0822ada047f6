package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskDTO is the wire shape of a task. Assignees and labels are genuine
// string slices at this boundary; the jsonb encoding used by Postgres stays
// inside this package.
type TaskDTO struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspaceId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Assignees   []string   `json:"assignees"`
	Labels      []string   `json:"labels"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
}

const (
	StatusTodo  = "todo"
	StatusDoing = "doing"
	StatusDone  = "done"

	defaultTitle = "Nueva tarea"
)

func validStatus(s string) bool {
	return s == StatusTodo || s == StatusDoing || s == StatusDone
}

// TaskDraft is the create payload. Every field is optional; defaults are
// applied by Create.
type TaskDraft struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Assignees   []string   `json:"assignees"`
	Labels      []string   `json:"labels"`
	DueDate     *time.Time `json:"dueDate"`
}

// TaskPatch carries partial-update semantics: a nil pointer (or unset
// tri-state) leaves the stored value untouched, an explicit JSON null clears
// where clearing is meaningful.
type TaskPatch struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Assignees   StringSetPatch `json:"assignees"`
	Labels      StringSetPatch `json:"labels"`
	DueDate     TimePatch      `json:"dueDate"`
}

// StringSetPatch distinguishes "field absent" (Set false) from "field
// supplied" (Set true). JSON null clears to the empty set.
type StringSetPatch struct {
	Set    bool
	Values []string
}

func (p *StringSetPatch) UnmarshalJSON(data []byte) error {
	p.Set = true
	if string(data) == "null" {
		p.Values = []string{}
		return nil
	}
	return json.Unmarshal(data, &p.Values)
}

// TimePatch distinguishes absent (Set false), null (Set true, Value nil) and
// a concrete timestamp.
type TimePatch struct {
	Set   bool
	Value *time.Time
}

func (p *TimePatch) UnmarshalJSON(data []byte) error {
	p.Set = true
	if string(data) == "null" {
		p.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	p.Value = &t
	return nil
}

// ITaskService is the storage collaborator for tasks. "Not found" is always
// (nil, nil) — callers decide whether to surface it.
type ITaskService interface {
	List(ctx context.Context, workspaceName string) ([]TaskDTO, error)
	Create(ctx context.Context, workspaceName string, draft TaskDraft) (*TaskDTO, error)
	Update(ctx context.Context, workspaceName, id string, patch TaskPatch) (*TaskDTO, error)
	Delete(ctx context.Context, workspaceName, id string) (*TaskDTO, error)
}

type taskService struct {
	db *sql.DB
}

func NewTaskService(db *sql.DB) ITaskService {
	return &taskService{db: db}
}

func (svc *taskService) workspaceID(ctx context.Context, name string) (string, error) {
	var id string
	err := svc.db.QueryRowContext(ctx,
		`SELECT id FROM workspaces WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (svc *taskService) List(ctx context.Context, workspaceName string) ([]TaskDTO, error) {
	wsID, err := svc.workspaceID(ctx, workspaceName)
	if err != nil {
		return nil, err
	}
	list := make([]TaskDTO, 0, 16)
	if wsID == "" {
		return list, nil
	}

	const q = `SELECT id, title, description, status, assignees, labels, due_date, created_at
	             FROM tasks WHERE workspace_id = $1
	         ORDER BY created_at DESC`

	rows, err := svc.db.QueryContext(ctx, q, wsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows, workspaceName)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

func (svc *taskService) Create(ctx context.Context, workspaceName string, draft TaskDraft) (*TaskDTO, error) {
	wsID, err := svc.workspaceID(ctx, workspaceName)
	if err != nil {
		return nil, err
	}
	if wsID == "" {
		return nil, nil
	}

	dto := &TaskDTO{
		ID:          draft.ID,
		WorkspaceID: workspaceName,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      draft.Status,
		Assignees:   draft.Assignees,
		Labels:      draft.Labels,
		DueDate:     draft.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}
	if dto.Title == "" {
		dto.Title = defaultTitle
	}
	if !validStatus(dto.Status) {
		dto.Status = StatusTodo
	}
	if dto.Assignees == nil {
		dto.Assignees = []string{}
	}
	if dto.Labels == nil {
		dto.Labels = []string{}
	}

	const ins = `INSERT INTO tasks (id, workspace_id, title, description, status,
	                                assignees, labels, due_date, created_at)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = svc.db.ExecContext(ctx, ins,
		dto.ID, wsID, dto.Title, dto.Description, dto.Status,
		encodeSet(dto.Assignees), encodeSet(dto.Labels), dto.DueDate, dto.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *taskService) Update(ctx context.Context, workspaceName, id string, patch TaskPatch) (*TaskDTO, error) {
	dto, err := svc.ownedTask(ctx, workspaceName, id)
	if err != nil || dto == nil {
		return nil, err
	}

	if patch.Title != nil {
		dto.Title = *patch.Title
	}
	if patch.Description != nil {
		dto.Description = *patch.Description
	}
	if patch.Status != nil && validStatus(*patch.Status) {
		dto.Status = *patch.Status
	}
	if patch.Assignees.Set {
		dto.Assignees = patch.Assignees.Values
	}
	if patch.Labels.Set {
		dto.Labels = patch.Labels.Values
	}
	if patch.DueDate.Set {
		dto.DueDate = patch.DueDate.Value
	}

	const upd = `UPDATE tasks
	                SET title = $1, description = $2, status = $3,
	                    assignees = $4, labels = $5, due_date = $6
	              WHERE id = $7`

	_, err = svc.db.ExecContext(ctx, upd,
		dto.Title, dto.Description, dto.Status,
		encodeSet(dto.Assignees), encodeSet(dto.Labels), dto.DueDate, dto.ID,
	)
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *taskService) Delete(ctx context.Context, workspaceName, id string) (*TaskDTO, error) {
	dto, err := svc.ownedTask(ctx, workspaceName, id)
	if err != nil || dto == nil {
		return nil, err
	}

	if _, err = svc.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, dto.ID); err != nil {
		return nil, err
	}
	return dto, nil
}

// ownedTask loads a task only when it belongs to the named workspace. A task
// that exists under another workspace is indistinguishable from a missing one.
func (svc *taskService) ownedTask(ctx context.Context, workspaceName, id string) (*TaskDTO, error) {
	const q = `SELECT t.id, t.title, t.description, t.status,
	                  t.assignees, t.labels, t.due_date, t.created_at
	             FROM tasks t
	             JOIN workspaces w ON w.id = t.workspace_id
	            WHERE t.id = $1 AND w.name = $2`

	row := svc.db.QueryRowContext(ctx, q, id, workspaceName)
	dto, err := scanTask(row, workspaceName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return dto, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner, workspaceName string) (*TaskDTO, error) {
	var (
		dto       TaskDTO
		assignees []byte
		labels    []byte
		due       sql.NullTime
	)
	err := row.Scan(&dto.ID, &dto.Title, &dto.Description, &dto.Status,
		&assignees, &labels, &due, &dto.CreatedAt)
	if err != nil {
		return nil, err
	}
	dto.WorkspaceID = workspaceName
	if dto.Assignees, err = decodeSet(assignees); err != nil {
		return nil, err
	}
	if dto.Labels, err = decodeSet(labels); err != nil {
		return nil, err
	}
	if due.Valid {
		t := due.Time
		dto.DueDate = &t
	}
	return &dto, nil
}

func encodeSet(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}

func decodeSet(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
