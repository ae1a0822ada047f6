package room

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every payload it receives, decoded into event/body pairs.
type fakeConn struct {
	id string

	mu         sync.Mutex
	events     []recordedEvent
	failWrites bool
}

type recordedEvent struct {
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body"`
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return errors.New("write failed")
	}
	var ev recordedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) received(event string) []recordedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []recordedEvent
	for _, ev := range c.events {
		if ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

func TestHubJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newFakeConn("c1")

	hub.Join("demo", c)
	hub.Join("demo", c)

	hub.Broadcast("demo", []byte(`{"event":"x","body":null}`))
	assert.Len(t, c.received("x"), 1, "double join must not duplicate delivery")
	assert.Equal(t, []string{"demo"}, hub.RoomsOf("c1"))
}

func TestHubLeaveNonMemberIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Leave("demo", "ghost")
	assert.Empty(t, hub.RoomsOf("ghost"))
}

func TestHubBroadcastReachesOnlyMembers(t *testing.T) {
	hub := NewHub()
	a, b, d := newFakeConn("a"), newFakeConn("b"), newFakeConn("d")
	hub.Join("w1", a)
	hub.Join("w1", b)
	hub.Join("w2", d)

	hub.Broadcast("w1", []byte(`{"event":"x","body":null}`))

	assert.Len(t, a.received("x"), 1)
	assert.Len(t, b.received("x"), 1)
	assert.Empty(t, d.received("x"))
}

func TestHubBroadcastSurvivesFailedWrite(t *testing.T) {
	hub := NewHub()
	bad, good := newFakeConn("bad"), newFakeConn("good")
	bad.failWrites = true
	hub.Join("w1", bad)
	hub.Join("w1", good)

	hub.Broadcast("w1", []byte(`{"event":"x","body":null}`))
	assert.Len(t, good.received("x"), 1)
}

func TestHubRoomsOfTracksMultipleRooms(t *testing.T) {
	hub := NewHub()
	c := newFakeConn("c1")
	hub.Join("w1", c)
	hub.Join("w2", c)

	rooms := hub.RoomsOf("c1")
	require.Len(t, rooms, 2)
	assert.ElementsMatch(t, []string{"w1", "w2"}, rooms)

	hub.Leave("w1", "c1")
	assert.Equal(t, []string{"w2"}, hub.RoomsOf("c1"))
}
