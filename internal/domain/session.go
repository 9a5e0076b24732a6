package domain

import (
	"errors"
	"fmt"
	"time"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseActive    Phase = "active"
	PhaseRest      Phase = "rest"
	PhasePaused    Phase = "paused"
	PhaseCompleted Phase = "completed"
	PhaseStopped   Phase = "stopped"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseStopped
}

var ErrInvalidTransition = errors.New("invalid phase transition")

// TransitionError is returned when an action is attempted from a phase that
// does not allow it. The session is left unchanged.
type TransitionError struct {
	From      Phase
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Attempted, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// SessionState drives one run through a workout:
//
//	idle -> active <-> paused
//	active -> rest <-> paused
//	rest -> active
//	active -> completed (after the last exercise)
//	idle|active|rest|paused -> stopped
type SessionState struct {
	Workout       Workout
	ExerciseIndex int
	Phase         Phase
	StartedAt     time.Time
	EndedAt       time.Time
	ExercisesLog  []ExerciseEntry

	CurrentPhaseStartedAt time.Time
	CurrentPhaseEndedAt   time.Time

	pausedFrom Phase
	now        func() time.Time
}

// NewSessionState creates an idle session. A nil clock uses time.Now.
func NewSessionState(w Workout, now func() time.Time) *SessionState {
	if now == nil {
		now = time.Now
	}
	return &SessionState{
		Workout: w,
		Phase:   PhaseIdle,
		now:     now,
	}
}

func (s *SessionState) Start() error {
	if s.Phase != PhaseIdle {
		return &TransitionError{From: s.Phase, Attempted: "start"}
	}
	now := s.now()
	s.StartedAt = now
	s.ExerciseIndex = 0
	s.Phase = PhaseActive
	s.CurrentPhaseStartedAt = now
	return nil
}

// NextPhase ends the current active or rest phase.
func (s *SessionState) NextPhase() error {
	switch s.Phase {
	case PhaseActive:
		now := s.now()
		s.CurrentPhaseEndedAt = now
		s.logCurrent(now)

		if s.ExerciseIndex < len(s.Workout.Exercises)-1 {
			s.Phase = PhaseRest
			s.CurrentPhaseStartedAt = now
		} else {
			s.Phase = PhaseCompleted
			s.EndedAt = now
		}
		return nil

	case PhaseRest:
		now := s.now()
		s.CurrentPhaseEndedAt = now
		s.ExerciseIndex++
		s.Phase = PhaseActive
		s.CurrentPhaseStartedAt = now
		return nil
	}
	return &TransitionError{From: s.Phase, Attempted: "advance"}
}

func (s *SessionState) Pause() error {
	if s.Phase != PhaseActive && s.Phase != PhaseRest {
		return &TransitionError{From: s.Phase, Attempted: "pause"}
	}
	s.pausedFrom = s.Phase
	s.Phase = PhasePaused
	return nil
}

// Resume returns to the phase that was interrupted by Pause.
func (s *SessionState) Resume() error {
	if s.Phase != PhasePaused {
		return &TransitionError{From: s.Phase, Attempted: "resume"}
	}
	s.Phase = s.pausedFrom
	s.pausedFrom = ""
	return nil
}

// PausedFrom returns the phase a paused session will resume into.
func (s *SessionState) PausedFrom() Phase {
	return s.pausedFrom
}

// Stop aborts the session. An exercise in progress is logged with the
// current instant as its end.
func (s *SessionState) Stop() error {
	if s.Phase.Terminal() {
		return &TransitionError{From: s.Phase, Attempted: "stop"}
	}
	now := s.now()
	if s.Phase == PhaseActive || (s.Phase == PhasePaused && s.pausedFrom == PhaseActive) {
		s.CurrentPhaseEndedAt = now
		s.logCurrent(now)
	}
	s.Phase = PhaseStopped
	s.pausedFrom = ""
	s.EndedAt = now
	return nil
}

// PhaseDuration is the planned length in seconds of the active or rest
// phase in progress (or interrupted, when paused).
func (s *SessionState) PhaseDuration() int {
	phase := s.Phase
	if phase == PhasePaused {
		phase = s.pausedFrom
	}
	switch phase {
	case PhaseActive:
		return s.Workout.Exercises[s.ExerciseIndex].DurationSeconds
	case PhaseRest:
		return s.Workout.RestSeconds()
	}
	return 0
}

// CurrentExercise returns the exercise at the current index.
func (s *SessionState) CurrentExercise() Exercise {
	return s.Workout.Exercises[s.ExerciseIndex]
}

// Finalize fills in ActualSeconds for every log entry.
func (s *SessionState) Finalize() {
	for i := range s.ExercisesLog {
		e := &s.ExercisesLog[i]
		e.ActualSeconds = ElapsedSeconds(e.StartedAt, e.EndedAt)
	}
}

func (s *SessionState) logCurrent(end time.Time) {
	ex := s.Workout.Exercises[s.ExerciseIndex]
	s.ExercisesLog = append(s.ExercisesLog, ExerciseEntry{
		Name:           ex.Name,
		PlannedSeconds: ex.DurationSeconds,
		StartedAt:      s.CurrentPhaseStartedAt,
		EndedAt:        end,
	})
}
