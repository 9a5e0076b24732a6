package domain

import (
	"errors"
	"testing"
	"time"
)

func TestWorkoutValidate(t *testing.T) {
	tests := []struct {
		name    string
		workout Workout
		wantErr bool
	}{
		{name: "valid", workout: neckWorkout()},
		{name: "missing id", workout: Workout{Exercises: []Exercise{{Name: "a", DurationSeconds: 1}}}, wantErr: true},
		{name: "no exercises", workout: Workout{ID: "x"}, wantErr: true},
		{name: "zero duration", workout: Workout{ID: "x", Exercises: []Exercise{{Name: "a"}}}, wantErr: true},
		{name: "negative rest", workout: Workout{ID: "x", DefaultRestSeconds: -1, Exercises: []Exercise{{Name: "a", DurationSeconds: 5}}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.workout.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidWorkout) {
				t.Fatalf("error %v does not wrap ErrInvalidWorkout", err)
			}
		})
	}
}

func TestWorkoutRestAndTotal(t *testing.T) {
	w := neckWorkout()
	if got := w.TotalSeconds(); got != 100 {
		t.Fatalf("TotalSeconds() = %d, want 100", got)
	}

	w.DefaultRestSeconds = 0
	if got := w.RestSeconds(); got != DefaultRestSeconds {
		t.Fatalf("RestSeconds() = %d, want %d", got, DefaultRestSeconds)
	}
}

func TestElapsedSeconds(t *testing.T) {
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -5 * time.Second, 1},
		{"rounds down", 44*time.Second + 499*time.Millisecond, 44},
		{"rounds half up", 44*time.Second + 500*time.Millisecond, 45},
		{"whole", 300 * time.Second, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedSeconds(base, base.Add(tt.d)); got != tt.want {
				t.Fatalf("ElapsedSeconds(%v) = %d, want %d", tt.d, got, tt.want)
			}
		})
	}
}
