package workspace

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSvc(t *testing.T) (IWorkspaceService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWorkspaceService(db), mock
}

func TestFindByNameReturnsWorkspace(t *testing.T) {
	svc, mock := newSvc(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM workspaces WHERE name = $1`)).
		WithArgs("demo").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "secret_hash", "created_at"}).
			AddRow("ws-1", "demo", "$2a$10$hash", now))

	ws, err := svc.FindByName(context.Background(), "demo")
	require.NoError(t, err)
	require.NotNil(t, ws)
	assert.Equal(t, "ws-1", ws.ID)
	assert.Equal(t, "$2a$10$hash", ws.SecretHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByNameAbsentIsNilNil(t *testing.T) {
	svc, mock := newSvc(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM workspaces WHERE name = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "secret_hash", "created_at"}))

	ws, err := svc.FindByName(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, ws)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWorkspace(t *testing.T) {
	svc, mock := newSvc(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO workspaces`)).
		WithArgs(sqlmock.AnyArg(), "demo", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ws, err := svc.Create(context.Background(), "demo", "hash")
	require.NoError(t, err)
	require.NotNil(t, ws)
	assert.Equal(t, "demo", ws.Name)
	assert.NotEmpty(t, ws.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWorkspaceDuplicate(t *testing.T) {
	svc, mock := newSvc(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO workspaces`)).
		WithArgs(sqlmock.AnyArg(), "demo", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ws, err := svc.Create(context.Background(), "demo", "hash")
	require.ErrorIs(t, err, ErrWorkspaceExists)
	assert.Nil(t, ws)
	require.NoError(t, mock.ExpectationsWereMet())
}
