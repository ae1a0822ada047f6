package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"taskroomgo/internal/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be < pongWait
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev-only
}

// ConnContext is handed to every event handler.
type ConnContext struct {
	Conn   *clientConn
	Server *WsServer
}

type WsServer struct {
	engine *room.Engine
	router *Router
}

func NewWsServer(engine *room.Engine) *WsServer {
	srv := &WsServer{
		engine: engine,
		router: NewRouter(),
	}
	srv.registerHandlers() // ← all WS events configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}

	// A connection starts room-less; it becomes a member only after a
	// successful "room:join".
	conn := newClientConn(rawConn)
	go s.reader(conn)
	go s.pinger(conn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 room:join ------------------------------------------------------------
	Register(
		s.router,
		"room:join",
		func(ctx context.Context, cc *ConnContext, req JoinBody) (any, error) {
			return nil, s.engine.Join(ctx, cc.Conn, req.WorkspaceID, req.Secret, req.User)
		},
	)

	// 🔹 task:create ----------------------------------------------------------
	Register(
		s.router,
		"task:create",
		func(ctx context.Context, cc *ConnContext, req CreateTaskBody) (any, error) {
			return nil, s.engine.CreateTask(ctx, req.WorkspaceID, req.Task)
		},
	)

	// 🔹 task:update ----------------------------------------------------------
	Register(
		s.router,
		"task:update",
		func(ctx context.Context, cc *ConnContext, req UpdateTaskBody) (any, error) {
			return nil, s.engine.UpdateTask(ctx, req.WorkspaceID, req.ID, req.Updates)
		},
	)

	// 🔹 task:delete ----------------------------------------------------------
	Register(
		s.router,
		"task:delete",
		func(ctx context.Context, cc *ConnContext, req DeleteTaskBody) (any, error) {
			return nil, s.engine.DeleteTask(ctx, req.WorkspaceID, req.ID)
		},
	)
}

func (s *WsServer) reader(conn *clientConn) {
	defer func() {
		s.engine.Disconnect(conn)
		_ = conn.rawConn.Close()
	}()

	conn.rawConn.SetReadLimit(maxMessageSize)
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{Conn: conn, Server: s}

	for {
		var env Envelope
		if err := conn.rawConn.ReadJSON(&env); err != nil {
			return // client closed or errored
		}

		// No deadline on handlers: join, credential check and task writes run
		// until the storage layer answers.
		_, err := s.router.dispatch(context.Background(), cc, env)
		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": room.EventRoomError,
				"body":  ErrorBody{Error: clientMessage(err)},
			})
		}
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.write(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

// clientMessage maps engine sentinels to their user-facing text; anything else
// collapses to a generic message so internals never leak.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrWorkspaceNotFound),
		errors.Is(err, room.ErrInvalidSecret),
		errors.Is(err, room.ErrJoinFailed),
		errors.Is(err, room.ErrInternal):
		return err.Error()
	default:
		return room.ErrInternal.Error()
	}
}
