package storage

import (
	"time"

	"github.com/hperssn/microdesk/internal/domain"
)

// DateLayout is the calendar-day format used for SessionRecord.Date.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

type SessionRecord struct {
	ID          string                 `json:"session_id"`
	Date        string                 `json:"date"`
	StartedAt   time.Time              `json:"started_at"`
	EndedAt     time.Time              `json:"ended_at"`
	Status      Status                 `json:"status"`
	WorkoutID   string                 `json:"workout_id"`
	WorkoutName string                 `json:"workout_name"`
	Exercises   []domain.ExerciseEntry `json:"exercises"`
}

// Seconds is the whole-second length of the session, at least one.
func (r SessionRecord) Seconds() int {
	return domain.ElapsedSeconds(r.StartedAt, r.EndedAt)
}

// FromSessionState converts a finished session into a record. The log must
// already be finalized. Date is the start day in loc.
func FromSessionState(id string, s *domain.SessionState, loc *time.Location) *SessionRecord {
	if loc == nil {
		loc = time.Local
	}

	status := StatusStopped
	if s.Phase == domain.PhaseCompleted {
		status = StatusCompleted
	}

	ended := s.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}

	exercises := make([]domain.ExerciseEntry, len(s.ExercisesLog))
	for i, e := range s.ExercisesLog {
		e.StartedAt = e.StartedAt.UTC()
		e.EndedAt = e.EndedAt.UTC()
		exercises[i] = e
	}

	return &SessionRecord{
		ID:          id,
		Date:        s.StartedAt.In(loc).Format(DateLayout),
		StartedAt:   s.StartedAt.UTC(),
		EndedAt:     ended.UTC(),
		Status:      status,
		WorkoutID:   s.Workout.ID,
		WorkoutName: s.Workout.Name,
		Exercises:   exercises,
	}
}
