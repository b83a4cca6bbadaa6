package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/chatwire/chat-system/internal/api"
	"github.com/chatwire/chat-system/internal/broker"
	"github.com/chatwire/chat-system/internal/infrastructure/db/mongo"
	"github.com/chatwire/chat-system/internal/infrastructure/db/redis"
	"github.com/chatwire/chat-system/internal/pkg/config"
	"github.com/chatwire/chat-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index bootstrap failed")
	}

	hub := broker.NewHub(log)
	dispatcher := broker.NewDispatcher(cfg.FanoutWorkers, hub, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, hub, dispatcher, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := hub.Shutdown(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("hub shutdown incomplete")
	}
	log.Info().Msg("server stopped")
}

// ensureIndexes creates the indexes the repositories depend on. Uniqueness of
// user names, emails, and group names is enforced here rather than in service
// code.
func ensureIndexes(ctx context.Context, db *mongodriver.Database) error {
	if err := mongo.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongo.NewGroupRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongo.NewMessageRepository(db).EnsureIndexes(ctx)
}
