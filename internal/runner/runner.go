package runner

import (
	"log"
	"sync"
	"time"

	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/storage"
)

// sessionRunner ties one SessionState to the shared countdown timer: each
// completed countdown advances the state machine and starts the countdown
// for the phase that follows.
type sessionRunner struct {
	mu sync.Mutex

	id        string
	state     *domain.SessionState
	timer     *CountdownTimer
	countdown *Countdown
	second    time.Duration
	ended     bool

	publish    func(Event)
	onComplete func(*sessionRunner)
}

func newSessionRunner(
	id string,
	state *domain.SessionState,
	timer *CountdownTimer,
	second time.Duration,
	publish func(Event),
	onComplete func(*sessionRunner),
) *sessionRunner {
	return &sessionRunner{
		id:         id,
		state:      state,
		timer:      timer,
		second:     second,
		publish:    publish,
		onComplete: onComplete,
	}
}

func (r *sessionRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.Start(); err != nil {
		return err
	}
	r.startCountdownLocked()
	r.publish(r.eventLocked(EventSessionStarted))
	return nil
}

func (r *sessionRunner) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	phase := r.state.Phase
	if phase != domain.PhaseActive && phase != domain.PhaseRest {
		return &domain.TransitionError{From: phase, Attempted: "pause"}
	}
	r.timer.Pause()
	if r.countdown == nil || r.countdown.finished() {
		// The phase already ran out; the watcher is about to advance it.
		return &domain.TransitionError{From: phase, Attempted: "pause"}
	}
	if err := r.state.Pause(); err != nil {
		return err
	}
	r.publish(r.eventLocked(EventPaused))
	return nil
}

func (r *sessionRunner) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.Resume(); err != nil {
		return err
	}
	r.timer.Resume()
	r.publish(r.eventLocked(EventResumed))
	return nil
}

func (r *sessionRunner) TogglePause() error {
	r.mu.Lock()
	paused := r.state.Phase == domain.PhasePaused
	r.mu.Unlock()

	if paused {
		return r.Resume()
	}
	return r.Pause()
}

// Skip ends the current phase early. It reports whether the session ended.
func (r *sessionRunner) Skip() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != domain.PhaseActive && r.state.Phase != domain.PhaseRest {
		return false, &domain.TransitionError{From: r.state.Phase, Attempted: "skip"}
	}
	r.timer.Stop()
	return r.advanceLocked()
}

func (r *sessionRunner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.Stop(); err != nil {
		return err
	}
	r.timer.Stop()
	r.countdown = nil
	r.ended = true
	r.publish(r.eventLocked(EventSessionStopped))
	return nil
}

func (r *sessionRunner) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

// Record finalizes the exercise log and converts the session for storage.
func (r *sessionRunner) Record(loc *time.Location) *storage.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.Finalize()
	return storage.FromSessionState(r.id, r.state, loc)
}

func (r *sessionRunner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.state
	snap := Snapshot{
		SessionID:     r.id,
		WorkoutID:     s.Workout.ID,
		WorkoutName:   s.Workout.Name,
		Phase:         s.Phase,
		PausedFrom:    s.PausedFrom(),
		ExerciseIndex: s.ExerciseIndex,
		ExerciseCount: len(s.Workout.Exercises),
		Exercise:      s.CurrentExercise().Name,
		PhaseSeconds:  s.PhaseDuration(),
		StartedAt:     s.StartedAt,
		Log:           append([]domain.ExerciseEntry(nil), s.ExercisesLog...),
	}
	if r.countdown != nil {
		remaining := r.countdown.Remaining()
		snap.RemainingMs = remaining.Milliseconds()
		snap.Clock = FormatClock(remaining)
	}
	return snap
}

func (r *sessionRunner) startCountdownLocked() {
	d := time.Duration(r.state.PhaseDuration()) * r.second
	c := r.timer.Start(d)
	r.countdown = c
	go r.watch(c)
}

func (r *sessionRunner) watch(c *Countdown) {
	for {
		select {
		case remaining := <-c.Ticks():
			r.mu.Lock()
			if r.countdown == c {
				ev := r.eventLocked(EventTick)
				ev.RemainingMs = remaining.Milliseconds()
				ev.Clock = FormatClock(remaining)
				r.publish(ev)
			}
			r.mu.Unlock()

		case <-c.Done():
			r.mu.Lock()
			if r.countdown != c {
				r.mu.Unlock()
				return
			}
			ended, err := r.advanceLocked()
			r.mu.Unlock()

			if err != nil {
				log.Printf("runner: session %s: %v", r.id, err)
			}
			if ended {
				r.onComplete(r)
			}
			return

		case <-c.Cancelled():
			return
		}
	}
}

func (r *sessionRunner) advanceLocked() (bool, error) {
	r.countdown = nil
	if err := r.state.NextPhase(); err != nil {
		return false, err
	}

	if r.state.Phase == domain.PhaseCompleted {
		r.ended = true
		r.publish(r.eventLocked(EventSessionCompleted))
		return true, nil
	}

	r.startCountdownLocked()
	r.publish(r.eventLocked(EventPhaseChanged))
	return false, nil
}

func (r *sessionRunner) eventLocked(t EventType) Event {
	ev := Event{
		Type:          t,
		SessionID:     r.id,
		Phase:         r.state.Phase,
		ExerciseIndex: r.state.ExerciseIndex,
		Exercise:      r.state.CurrentExercise().Name,
	}
	if r.countdown != nil {
		remaining := r.countdown.Remaining()
		ev.RemainingMs = remaining.Milliseconds()
		ev.Clock = FormatClock(remaining)
	}
	return ev
}
