package storage

import (
	"fmt"
	"log"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

type Options struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string

	// FallbackDir, when set, is used for a FileRepository if the primary
	// backend cannot be opened.
	FallbackDir string
}

// Open selects the repository backend once at start-up.
func Open(opts Options) (Repository, error) {
	repo, err := openPrimary(opts)
	if err == nil {
		return repo, nil
	}
	if opts.FallbackDir == "" || opts.Backend == BackendFile {
		return nil, err
	}

	log.Printf("storage: %s unavailable, falling back to files in %s: %v", opts.Backend, opts.FallbackDir, err)
	return NewFileRepository(opts.FallbackDir)
}

func openPrimary(opts Options) (Repository, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return NewSQLiteRepository(opts.SQLitePath)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, unavailable("postgres", fmt.Errorf("no connection string configured"))
		}
		return NewPostgresRepository(opts.PostgresDSN)
	case BackendFile:
		return NewFileRepository(opts.FallbackDir)
	}
	return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
}
