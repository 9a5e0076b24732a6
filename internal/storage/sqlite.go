package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, unavailable("sqlite", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, unavailable("sqlite", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("sqlite", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		db.Close()
		return nil, unavailable("sqlite", err)
	}
	if err := migrateUp("sqlite", "sqlite3", driver); err != nil {
		db.Close()
		return nil, wrapErr("sqlite", "migrate", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, record *SessionRecord) error {
	exercisesJSON, err := json.Marshal(record.Exercises)
	if err != nil {
		return wrapErr("sqlite", "add", err)
	}

	query := `
		INSERT INTO sessions (id, date, started_at, ended_at, status, workout_id, workout_name, exercises_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			status = excluded.status,
			workout_id = excluded.workout_id,
			workout_name = excluded.workout_name,
			exercises_json = excluded.exercises_json
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Date,
		record.StartedAt.UTC(),
		record.EndedAt.UTC(),
		string(record.Status),
		record.WorkoutID,
		record.WorkoutName,
		string(exercisesJSON),
	)

	return wrapErr("sqlite", "add", err)
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, date string) ([]SessionRecord, error) {
	query := `
		SELECT id, date, started_at, ended_at, status, workout_id, workout_name, exercises_json
		FROM sessions
		WHERE date = ?
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, wrapErr("sqlite", "get by date", err)
	}
	defer rows.Close()

	records, err := scanSessions(rows)
	return records, wrapErr("sqlite", "get by date", err)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanSessions(rows *sql.Rows) ([]SessionRecord, error) {
	var records []SessionRecord

	for rows.Next() {
		var record SessionRecord
		var status string
		var exercisesJSON []byte

		err := rows.Scan(
			&record.ID,
			&record.Date,
			&record.StartedAt,
			&record.EndedAt,
			&status,
			&record.WorkoutID,
			&record.WorkoutName,
			&exercisesJSON,
		)
		if err != nil {
			return nil, err
		}

		record.Status = Status(status)
		record.StartedAt = record.StartedAt.UTC()
		record.EndedAt = record.EndedAt.UTC()
		if err := json.Unmarshal(exercisesJSON, &record.Exercises); err != nil {
			return nil, fmt.Errorf("session %s: %w", record.ID, err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
