package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskroomgo/internal/config"
	"taskroomgo/internal/database/db_client"
	"taskroomgo/internal/http/http_server"
	"taskroomgo/internal/journal"
	"taskroomgo/internal/redis/redis_client"
	"taskroomgo/internal/room"
	"taskroomgo/internal/services/task"
	"taskroomgo/internal/services/workspace"
	"taskroomgo/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	// 5. Storage collaborators
	workspaceSvc := workspace.NewWorkspaceService(pgDb)
	taskSvc := task.NewTaskService(pgDb)

	// 6. Room engine: membership hub, presence registry, credential gate,
	//    cross-instance relay
	hub := room.NewHub()
	presence := room.NewPresenceRegistry()
	gate := room.NewGate(workspaceSvc)
	relay := room.NewRelay(redisClient, hub)
	engine := room.NewEngine(hub, presence, gate, taskSvc, relay)

	// 7. Background: fan-in of other instances' broadcasts
	go relay.Run(ctx)

	// 8. Background: task-event journal (redis stream ➜ Postgres)
	journal.Run(ctx, redisClient, pgDb)

	// 9. Initialize the WS server
	wsSrv := ws.NewWsServer(engine)

	// 10. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, workspaceSvc, taskSvc, cfg.BcryptCost)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
