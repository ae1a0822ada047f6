package room

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskroomgo/internal/services/workspace"
)

// Sentinel errors surfaced to clients through room:error. The messages are the
// user-facing strings.
var (
	ErrWorkspaceNotFound = errors.New("Workspace no existe")
	ErrInvalidSecret     = errors.New("Clave inválida")
	ErrJoinFailed        = errors.New("Error al unirse")
	ErrInternal          = errors.New("Error interno")
)

// Gate verifies a supplied secret against a workspace's stored bcrypt hash.
// Read-only; it never exposes the hash.
type Gate struct {
	workspaces workspace.IWorkspaceService
}

func NewGate(workspaces workspace.IWorkspaceService) *Gate {
	return &Gate{workspaces: workspaces}
}

// Verify distinguishes a missing workspace from a bad secret so the client can
// tell the two apart. bcrypt's compare is constant-time over the digest.
func (g *Gate) Verify(ctx context.Context, workspaceName, secret string) error {
	ws, err := g.workspaces.FindByName(ctx, workspaceName)
	if err != nil {
		zap.L().Error("gate.find_workspace", zap.String("workspace", workspaceName), zap.Error(err))
		return ErrJoinFailed
	}
	if ws == nil {
		return ErrWorkspaceNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(ws.SecretHash), []byte(secret)) != nil {
		return ErrInvalidSecret
	}
	return nil
}
