package domain

import (
	"errors"
	"fmt"
	"time"
)

// DefaultRestSeconds is used when a workout does not set its own rest length.
const DefaultRestSeconds = 10

var ErrInvalidWorkout = errors.New("invalid workout")

type Exercise struct {
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Workout is an ordered template of exercises. Sessions never mutate it.
type Workout struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	DefaultRestSeconds int        `json:"default_rest_seconds"`
	Exercises          []Exercise `json:"exercises"`
}

func (w Workout) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidWorkout)
	}
	if len(w.Exercises) == 0 {
		return fmt.Errorf("%w: %s has no exercises", ErrInvalidWorkout, w.ID)
	}
	for i, ex := range w.Exercises {
		if ex.DurationSeconds <= 0 {
			return fmt.Errorf("%w: %s exercise %d (%q) has duration %d",
				ErrInvalidWorkout, w.ID, i, ex.Name, ex.DurationSeconds)
		}
	}
	if w.DefaultRestSeconds < 0 {
		return fmt.Errorf("%w: %s has negative rest", ErrInvalidWorkout, w.ID)
	}
	return nil
}

// RestSeconds returns the rest length between exercises.
func (w Workout) RestSeconds() int {
	if w.DefaultRestSeconds <= 0 {
		return DefaultRestSeconds
	}
	return w.DefaultRestSeconds
}

// TotalSeconds is the planned length of a full run including rests.
func (w Workout) TotalSeconds() int {
	total := 0
	for _, ex := range w.Exercises {
		total += ex.DurationSeconds
	}
	if n := len(w.Exercises); n > 1 {
		total += (n - 1) * w.RestSeconds()
	}
	return total
}

// ElapsedSeconds rounds the span between two instants to whole seconds,
// never returning less than one.
func ElapsedSeconds(start, end time.Time) int {
	secs := int(end.Sub(start).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
