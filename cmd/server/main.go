package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hperssn/microdesk/internal/config"
	"github.com/hperssn/microdesk/internal/runner"
	"github.com/hperssn/microdesk/internal/storage"
	"github.com/hperssn/microdesk/internal/workout"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}

	catalog, err := workout.LoadCatalog(cfg.WorkoutsDir)
	if err != nil {
		log.Printf("workouts: %v; using built-in set", err)
	}

	repo, err := storage.Open(storage.Options{
		Backend:     cfg.Store,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
		FallbackDir: cfg.FallbackDir,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	manager := runner.NewManager(catalog, repo, runner.Options{
		TickInterval: cfg.TickInterval,
		Location:     cfg.Location,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = catalog.Watch(ctx, cfg.WorkoutsDir, func(err error) {
		if err != nil {
			log.Printf("workouts: reload failed, keeping current set: %v", err)
			return
		}
		log.Printf("workouts: reloaded %d definitions", len(catalog.List()))
	})
	if err != nil {
		log.Printf("workouts: not watching %s: %v", cfg.WorkoutsDir, err)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newRouter(manager, catalog, cfg.StaticDir),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := manager.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-done
}
