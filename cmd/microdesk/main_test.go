package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/runner"
	"github.com/hperssn/microdesk/internal/storage"
	"github.com/hperssn/microdesk/internal/workout"
)

func quickCatalog() *workout.Catalog {
	return workout.NewCatalog([]domain.Workout{{
		ID:                 "quick",
		Name:               "Quick",
		DefaultRestSeconds: 1,
		Exercises: []domain.Exercise{
			{Name: "Neck rolls", DurationSeconds: 2},
			{Name: "Shrugs", DurationSeconds: 1},
		},
	}})
}

func newFastManager(t *testing.T, second time.Duration) *runner.Manager {
	t.Helper()
	repo, err := storage.NewFileRepository(t.TempDir())
	require.NoError(t, err)
	m := runner.NewManager(quickCatalog(), repo, runner.Options{
		Second:       second,
		TickInterval: 2 * time.Millisecond,
		Location:     time.UTC,
	})
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m
}

func TestRunSessionToCompletion(t *testing.T) {
	m := newFastManager(t, 10*time.Millisecond)
	var out bytes.Buffer

	rec, err := runSession(context.Background(), m, "quick", &out)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, storage.StatusCompleted, rec.Status)
	assert.Len(t, rec.Exercises, 2)

	printed := out.String()
	assert.Contains(t, printed, "Quick (2 exercises)")
	assert.Contains(t, printed, "Neck rolls")
	assert.Contains(t, printed, "Rest")
	assert.Contains(t, printed, "Shrugs")
}

func TestRunSessionCancelStops(t *testing.T) {
	m := newFastManager(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	rec, err := runSession(ctx, m, "quick", &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, storage.StatusStopped, rec.Status)
	require.Len(t, rec.Exercises, 1)
	assert.Equal(t, "Neck rolls", rec.Exercises[0].Name)
}

func TestRunSessionUnknownWorkout(t *testing.T) {
	m := newFastManager(t, time.Second)
	_, err := runSession(context.Background(), m, "nope", &bytes.Buffer{})
	assert.ErrorIs(t, err, workout.ErrWorkoutNotFound)
}

func TestPrintSessions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSessions(&out, "2025-12-05", time.UTC, nil))
	assert.Equal(t, "No sessions on 2025-12-05\n", out.String())

	start := time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC)
	out.Reset()
	require.NoError(t, printSessions(&out, "2025-12-05", time.UTC, []storage.SessionRecord{
		{StartedAt: start, EndedAt: start.Add(5 * time.Minute), WorkoutName: "Neck", Status: storage.StatusCompleted},
		{StartedAt: start.Add(10 * time.Minute), EndedAt: start.Add(12 * time.Minute), WorkoutName: "Wrists", Status: storage.StatusStopped},
	}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "10:00:00")
	assert.Contains(t, lines[1], "05:00")
	assert.Contains(t, lines[2], "stopped")
	assert.Contains(t, lines[3], "07:00")
}

func TestPrintWorkouts(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printWorkouts(&out, quickCatalog().List()))
	assert.Contains(t, out.String(), "quick")
	// 2 + 1 rest + 1 seconds.
	assert.Contains(t, out.String(), "00:04")
}
