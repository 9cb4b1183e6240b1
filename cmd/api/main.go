package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/identito/auth-service/internal/api"
	"github.com/identito/auth-service/internal/core/crypto"
	"github.com/identito/auth-service/internal/core/service"
	"github.com/identito/auth-service/internal/infrastructure/config"
	mongodb "github.com/identito/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/identito/auth-service/internal/infrastructure/db/redis"
	"github.com/identito/auth-service/internal/infrastructure/queue"
	"github.com/identito/auth-service/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- User store (required) ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Error().Err(err).Msg("mongo connection failed")
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Error().Err(err).Msg("index creation failed")
		os.Exit(1)
	}

	// --- Session cache (optional): run without it when Redis is down ---
	var sessionCache service.SessionCache
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, session cache disabled")
		rdb = nil
	} else {
		defer rdb.Close()
		sessionCache = redisdb.NewSessionCache(rdb)
	}

	// --- Core services ---
	hasher := crypto.NewHasher(cfg.BcryptCost)
	tokens := crypto.NewTokenGenerator()
	authSvc := service.NewAuthService(userRepo, hasher, tokens, sessionCache, log)

	auditSvc := service.NewAuditService(mongodb.NewAuditRepository(db), log)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditSvc, log)
	dispatcher.Start(ctx)

	router := api.NewRouter(api.Deps{
		Auth:       authSvc,
		Audit:      dispatcher,
		CookieName: cfg.SessionCookie,
		Mongo:      db,
		Redis:      rdb,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth service starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
		log.Info().Msg("auth service stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}
}
