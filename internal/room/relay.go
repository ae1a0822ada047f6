package room

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	relayChannelPrefix  = "room:"
	relayChannelSuffix  = ":events"
	relayChannelPattern = "room:*:events"

	// EventStream is the Redis stream the journal worker tails.
	EventStream = "room_events_stream"
)

// Relay mirrors task broadcasts across instances through Redis pub/sub so a
// room can span processes. Every published event is also appended to
// EventStream for the journal. Messages carry the publishing instance id;
// Run drops the instance's own messages to avoid double delivery.
type Relay struct {
	rdc        *redis.Client
	hub        *Hub
	instanceID string
}

func NewRelay(rdc *redis.Client, hub *Hub) *Relay {
	return &Relay{
		rdc:        rdc,
		hub:        hub,
		instanceID: uuid.NewString(),
	}
}

type relayMessage struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

func (r *Relay) Publish(ctx context.Context, workspaceName, event string, payload []byte) error {
	msg, err := json.Marshal(relayMessage{Origin: r.instanceID, Payload: payload})
	if err != nil {
		return err
	}
	channel := relayChannelPrefix + workspaceName + relayChannelSuffix
	if err := r.rdc.Publish(ctx, channel, msg).Err(); err != nil {
		return err
	}
	return r.rdc.XAdd(ctx, &redis.XAddArgs{
		Stream: EventStream,
		Values: map[string]any{
			"workspace": workspaceName,
			"event":     event,
			"payload":   string(payload),
			"at":        time.Now().Unix(),
		},
	}).Err()
}

// Run fans messages from other instances into the local hub. Blocks until the
// context is cancelled; start it once at service boot.
func (r *Relay) Run(ctx context.Context) {
	pubsub := r.rdc.PSubscribe(ctx, relayChannelPattern)
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			// channel format: "room:<workspace>:events"; the workspace name
			// itself may contain colons.
			name := strings.TrimSuffix(strings.TrimPrefix(m.Channel, relayChannelPrefix), relayChannelSuffix)
			var msg relayMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				zap.L().Warn("relay.decode", zap.Error(err))
				continue
			}
			if msg.Origin == r.instanceID {
				continue
			}
			r.hub.Broadcast(name, msg.Payload)
		}
	}
}
