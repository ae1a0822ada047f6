package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterDispatchesTypedBody(t *testing.T) {
	r := NewRouter()
	var got JoinBody
	Register(r, "room:join", func(_ context.Context, _ *ConnContext, req JoinBody) (any, error) {
		got = req
		return nil, nil
	})

	env := Envelope{
		Event: "room:join",
		Body:  json.RawMessage(`{"workspaceId":"demo","secret":"s","user":{"name":"Ana","color":"#fff"}}`),
	}
	_, err := r.dispatch(context.Background(), &ConnContext{}, env)
	require.NoError(t, err)
	assert.Equal(t, "demo", got.WorkspaceID)
	assert.Equal(t, "Ana", got.User.Name)
	assert.Equal(t, "#fff", got.User.Color)
}

func TestRouterUnknownEvent(t *testing.T) {
	r := NewRouter()
	_, err := r.dispatch(context.Background(), &ConnContext{}, Envelope{Event: "nope"})
	require.Error(t, err)
}

func TestRouterPropagatesHandlerError(t *testing.T) {
	r := NewRouter()
	boom := errors.New("boom")
	Register(r, "task:create", func(_ context.Context, _ *ConnContext, _ CreateTaskBody) (any, error) {
		return nil, boom
	})

	_, err := r.dispatch(context.Background(), &ConnContext{}, Envelope{Event: "task:create"})
	require.ErrorIs(t, err, boom)
}

func TestRouterRejectsMalformedBody(t *testing.T) {
	r := NewRouter()
	Register(r, "task:delete", func(_ context.Context, _ *ConnContext, _ DeleteTaskBody) (any, error) {
		return nil, nil
	})

	env := Envelope{Event: "task:delete", Body: json.RawMessage(`{"workspaceId":42}`)}
	_, err := r.dispatch(context.Background(), &ConnContext{}, env)
	require.Error(t, err)
}
