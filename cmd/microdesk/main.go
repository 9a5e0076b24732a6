// Package main implements the microdesk CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hperssn/microdesk/internal/config"
	"github.com/hperssn/microdesk/internal/storage"
	"github.com/hperssn/microdesk/internal/workout"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "microdesk",
	Short:         "Guided desk exercise sessions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file to load before reading settings")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "microdesk:", err)
		os.Exit(1)
	}
}

// app is what every command needs: settings, workouts and the session
// store. close releases the store.
type app struct {
	cfg     *config.Config
	catalog *workout.Catalog
	repo    storage.Repository
}

func openApp() (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	catalog, err := workout.LoadCatalog(cfg.WorkoutsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workouts: %v; using built-in set\n", err)
	}

	repo, err := storage.Open(storage.Options{
		Backend:     cfg.Store,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
		FallbackDir: cfg.FallbackDir,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, catalog: catalog, repo: repo}, nil
}

func (a *app) close() {
	a.repo.Close()
}
