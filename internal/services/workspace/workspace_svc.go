package workspace

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// WorkspaceDTO mirrors a row of the workspaces table. The secret hash never
// leaves the server; JSON marshalling skips it.
type WorkspaceDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

var ErrWorkspaceExists = errors.New("workspace already exists")

type IWorkspaceService interface {
	// FindByName returns (nil, nil) when no workspace carries the name.
	FindByName(ctx context.Context, name string) (*WorkspaceDTO, error)
	Create(ctx context.Context, name, secretHash string) (*WorkspaceDTO, error)
}

type workspaceService struct {
	db *sql.DB
}

func NewWorkspaceService(db *sql.DB) IWorkspaceService {
	return &workspaceService{db: db}
}

func (svc *workspaceService) FindByName(ctx context.Context, name string) (*WorkspaceDTO, error) {
	const q = `SELECT id, name, secret_hash, created_at
	             FROM workspaces WHERE name = $1`

	dto := &WorkspaceDTO{}
	err := svc.db.QueryRowContext(ctx, q, name).
		Scan(&dto.ID, &dto.Name, &dto.SecretHash, &dto.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (svc *workspaceService) Create(ctx context.Context, name, secretHash string) (*WorkspaceDTO, error) {
	dto := &WorkspaceDTO{
		ID:         uuid.NewString(),
		Name:       name,
		SecretHash: secretHash,
		CreatedAt:  time.Now().UTC(),
	}

	const ins = `INSERT INTO workspaces (id, name, secret_hash, created_at)
	                  VALUES ($1, $2, $3, $4)
	             ON CONFLICT (name) DO NOTHING`

	res, err := svc.db.ExecContext(ctx, ins, dto.ID, dto.Name, dto.SecretHash, dto.CreatedAt)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrWorkspaceExists
	}
	return dto, nil
}
