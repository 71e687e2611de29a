package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/woshisimox/mahjong-ai-match/internal/config"
	"github.com/woshisimox/mahjong-ai-match/internal/game"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong"
	"github.com/woshisimox/mahjong-ai-match/internal/handler"
	"github.com/woshisimox/mahjong-ai-match/internal/health"
	imNats "github.com/woshisimox/mahjong-ai-match/internal/nats"
	"github.com/woshisimox/mahjong-ai-match/internal/router"
	"github.com/woshisimox/mahjong-ai-match/internal/storage"
	"github.com/woshisimox/mahjong-ai-match/internal/task"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "以 HTTP 服务运行比赛房间",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.App.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger := newLogger(level, logFormat)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	deps := mahjong.Deps{Logger: logger}

	// 连接 NATS
	var (
		nc        *nats.Conn
		natsState health.Connectivity
	)
	if cfg.NATS.Enabled {
		natsClient, err := imNats.NewClient(cfg.NATS, logger)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer natsClient.Close()
		nc = natsClient.Conn()
		natsState = natsClient
		deps.Publisher = imNats.NewEventPublisher(nc)
		deps.Remote = nc
	}

	// 连接 Redis
	var redisClient *redis.Client
	var hot storage.Store = storage.NewMemory()
	if cfg.Redis.Enabled {
		redisClient = connectRedis(cfg.Redis)
		defer redisClient.Close()
		hot = storage.NewRedisStore(redisClient)
		logger.Info("Connected to Redis", "host", cfg.Redis.Host)
	}
	deps.Store = hot

	// 连接数据库
	var db *pgxpool.Pool
	if cfg.Database.Enabled {
		var err error
		db, err = connectDatabase(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		pg := storage.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		deps.Store = storage.NewTiered(hot, pg)
		logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)
	}

	pool := task.NewWorkerPool(cfg.Server.Workers)
	pool.Start()
	defer pool.Stop()
	rooms := game.NewRoomManager(cfg.Server.MaxRooms, cfg.Server.EvictTimeout)
	deps.Pool = pool
	deps.Rooms = rooms

	svc := mahjong.NewService(cfg.Engine, deps)

	// 本进程同时提供远程决策服务
	if nc != nil && cfg.NATS.Responder {
		responder := imNats.NewDecisionResponder(nc, svc, imNats.ResponderConfig{})
		if err := responder.Start(ctx); err != nil {
			return fmt.Errorf("start responder: %w", err)
		}
		defer responder.Stop()
	}

	engine := router.SetupRouter(cfg.App.Mode, logger,
		health.NewChecker(natsState, redisClient, db, rooms),
		handler.NewRoomHandler(svc),
		handler.NewRulesHandler(svc),
	)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server started", "addr", server.Addr, "name", cfg.App.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	// 优雅退出
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err := rooms.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Rooms did not stop in time", "error", err)
	}
	logger.Info("Mahjong service stopped")
	return nil
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}
