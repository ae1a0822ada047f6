package room

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRelayPublish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := &Relay{rdc: db, hub: NewHub(), instanceID: "inst-1"}

	payload := []byte(`{"event":"tasks:created","body":{"id":"t1"}}`)
	wrapped, err := json.Marshal(relayMessage{Origin: "inst-1", Payload: payload})
	require.NoError(t, err)

	mock.ExpectPublish("room:demo:events", wrapped).SetVal(1)
	// XAdd carries a wall-clock "at" value; match on stream only. The Values
	// below are placeholders so the arg count matches — redismock compares
	// lengths before running the custom matcher.
	mock.CustomMatch(func(expected, actual []interface{}) error {
		if len(actual) < 2 || actual[0] != "xadd" || actual[1] != EventStream {
			return errors.New("expected XADD on the room event stream")
		}
		return nil
	}).ExpectXAdd(&redis.XAddArgs{
		Stream: EventStream,
		Values: map[string]any{"workspace": "", "event": "", "payload": "", "at": 0},
	}).SetVal("1-0")

	require.NoError(t, r.Publish(context.Background(), "demo", "tasks:created", payload))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelayPublishError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := &Relay{rdc: db, hub: NewHub(), instanceID: "inst-1"}

	mock.CustomMatch(func(expected, actual []interface{}) error {
		return nil
	}).ExpectPublish("room:demo:events", nil).SetErr(errors.New("redis down"))

	err := r.Publish(context.Background(), "demo", "tasks:created", []byte(`{}`))
	require.Error(t, err)
}
