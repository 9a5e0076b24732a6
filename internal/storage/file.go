package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const filePrefix = "session_"

// FileRepository keeps one JSON document per session in a directory and
// answers date queries by scanning every session file. It is the fallback
// when no database is reachable.
type FileRepository struct {
	dir string
}

var _ Repository = (*FileRepository)(nil)

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable("file", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) Add(ctx context.Context, record *SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return wrapErr("file", "add", err)
	}
	if record.ID == "" || strings.ContainsAny(record.ID, `/\`) {
		return wrapErr("file", "add", fmt.Errorf("invalid session id %q", record.ID))
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return wrapErr("file", "add", err)
	}

	// Readers never see a partially written file.
	path := r.path(record.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return wrapErr("file", "add", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return wrapErr("file", "add", err)
	}
	return nil
}

func (r *FileRepository) GetByDate(ctx context.Context, date string) ([]SessionRecord, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, wrapErr("file", "get by date", err)
	}

	var records []SessionRecord
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, wrapErr("file", "get by date", err)
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			log.Printf("storage: skipping unreadable %s: %v", name, err)
			continue
		}
		var record SessionRecord
		if err := json.Unmarshal(data, &record); err != nil {
			log.Printf("storage: skipping invalid %s: %v", name, err)
			continue
		}
		if record.Date == date {
			records = append(records, record)
		}
	}

	return records, nil
}

func (r *FileRepository) Close() error {
	return nil
}

func (r *FileRepository) path(id string) string {
	return filepath.Join(r.dir, filePrefix+id+".json")
}
