package domain

import "time"

// ExerciseEntry records one exercise that was actually begun.
type ExerciseEntry struct {
	Name           string    `json:"name"`
	PlannedSeconds int       `json:"planned_seconds"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	ActualSeconds  int       `json:"actual_seconds"`
}

// Truncated reports whether the exercise ended before its planned length.
func (e ExerciseEntry) Truncated() bool {
	return e.ActualSeconds < e.PlannedSeconds
}
