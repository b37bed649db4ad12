package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dextryayers/rujukan-jatim/internal/cache"
	"github.com/dextryayers/rujukan-jatim/internal/config"
	"github.com/dextryayers/rujukan-jatim/internal/database"
	"github.com/dextryayers/rujukan-jatim/internal/handlers"
	"github.com/dextryayers/rujukan-jatim/internal/jobs"
	applog "github.com/dextryayers/rujukan-jatim/internal/log"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
	"github.com/dextryayers/rujukan-jatim/internal/server"
	"github.com/dextryayers/rujukan-jatim/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := applog.New(cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := database.ApplySchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("apply schema")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	store, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("init object store")
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure bucket")
	}

	handlerSet := handlers.NewHandlerSet(cfg, log, pool, redisClient, store)
	srv := server.New(cfg, log, handlerSet)

	scheduler := jobs.NewScheduler(
		repository.NewTokenRepository(pool),
		repository.NewVisitorRepository(pool),
		log,
	)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("start scheduler")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("bye")
}
