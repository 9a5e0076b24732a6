package runner

import (
	"time"

	"github.com/hperssn/microdesk/internal/domain"
)

type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventTick             EventType = "tick"
	EventPhaseChanged     EventType = "phase_changed"
	EventPaused           EventType = "paused"
	EventResumed          EventType = "resumed"
	EventSessionCompleted EventType = "session_completed"
	EventSessionStopped   EventType = "session_stopped"
	EventSessionSaved     EventType = "session_saved"
	EventSaveFailed       EventType = "save_failed"
)

type Event struct {
	Type          EventType    `json:"type"`
	SessionID     string       `json:"sessionId"`
	Phase         domain.Phase `json:"phase,omitempty"`
	ExerciseIndex int          `json:"exerciseIndex"`
	Exercise      string       `json:"exercise,omitempty"`
	RemainingMs   int64        `json:"remainingMs"`
	Clock         string       `json:"clock,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// Snapshot is a point-in-time view of the active session.
type Snapshot struct {
	SessionID     string                 `json:"sessionId"`
	WorkoutID     string                 `json:"workoutId"`
	WorkoutName   string                 `json:"workoutName"`
	Phase         domain.Phase           `json:"phase"`
	PausedFrom    domain.Phase           `json:"pausedFrom,omitempty"`
	ExerciseIndex int                    `json:"exerciseIndex"`
	ExerciseCount int                    `json:"exerciseCount"`
	Exercise      string                 `json:"exercise"`
	PhaseSeconds  int                    `json:"phaseSeconds"`
	RemainingMs   int64                  `json:"remainingMs"`
	Clock         string                 `json:"clock"`
	StartedAt     time.Time              `json:"startedAt"`
	Log           []domain.ExerciseEntry `json:"log"`
}
