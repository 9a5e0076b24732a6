package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(connStr string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, unavailable("postgres", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("postgres", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, unavailable("postgres", err)
	}
	if err := migrateUp("postgres", "postgres", driver); err != nil {
		db.Close()
		return nil, wrapErr("postgres", "migrate", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Add(ctx context.Context, record *SessionRecord) error {
	exercisesJSON, err := json.Marshal(record.Exercises)
	if err != nil {
		return wrapErr("postgres", "add", err)
	}

	query := `
		INSERT INTO sessions (id, date, started_at, ended_at, status, workout_id, workout_name, exercises_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			started_at = EXCLUDED.started_at,
			ended_at = EXCLUDED.ended_at,
			status = EXCLUDED.status,
			workout_id = EXCLUDED.workout_id,
			workout_name = EXCLUDED.workout_name,
			exercises_json = EXCLUDED.exercises_json
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

	return wrapErr("postgres", "add", err)
}

func (r *PostgresRepository) GetByDate(ctx context.Context, date string) ([]SessionRecord, error) {
	query := `
		SELECT id, date, started_at, ended_at, status, workout_id, workout_name, exercises_json
		FROM sessions
		WHERE date = $1
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, wrapErr("postgres", "get by date", err)
	}
	defer rows.Close()

	records, err := scanSessions(rows)
	return records, wrapErr("postgres", "get by date", err)
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
