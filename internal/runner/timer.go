package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTickInterval is how often a running countdown wakes up to report
// its remaining time. It has no effect on accuracy.
const DefaultTickInterval = 250 * time.Millisecond

var ErrCountdownCancelled = errors.New("countdown cancelled")

// Countdown is the handle for one Start call.
type Countdown struct {
	ticks     chan time.Duration
	done      chan struct{}
	cancelled chan struct{}

	mu        sync.Mutex
	remaining time.Duration
}

func newCountdown(d time.Duration) *Countdown {
	return &Countdown{
		ticks:     make(chan time.Duration, 8),
		done:      make(chan struct{}),
		cancelled: make(chan struct{}),
		remaining: d,
	}
}

// Ticks delivers the remaining time on every wake-up. The final zero tick is
// always delivered; intermediate ticks are dropped for slow readers.
func (c *Countdown) Ticks() <-chan time.Duration { return c.ticks }

// Done is closed once the countdown reaches zero.
func (c *Countdown) Done() <-chan struct{} { return c.done }

// Cancelled is closed when the countdown is stopped or replaced.
func (c *Countdown) Cancelled() <-chan struct{} { return c.cancelled }

// Remaining is the value reported by the latest wake-up or pause.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Wait blocks until the countdown completes, is cancelled, or ctx ends.
func (c *Countdown) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-c.cancelled:
		return ErrCountdownCancelled
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Countdown) finished() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Countdown) setRemaining(d time.Duration) {
	c.mu.Lock()
	c.remaining = d
	c.mu.Unlock()
}

func (c *Countdown) publish(d time.Duration, final bool) {
	select {
	case c.ticks <- d:
		return
	default:
	}
	if !final {
		return
	}
	// Only the timer writes to ticks, so after making room the send succeeds.
	select {
	case <-c.ticks:
	default:
	}
	c.ticks <- d
}

// CountdownTimer counts down against an absolute target instant. Every
// wake-up re-derives the remaining time from the target, so late or missed
// wake-ups never accumulate drift.
type CountdownTimer struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time

	current   *Countdown
	target    time.Time
	remaining time.Duration
	paused    bool
	wake      *time.Timer
	wakeGen   uint64
}

func NewCountdownTimer(interval time.Duration) *CountdownTimer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &CountdownTimer{
		interval: interval,
		now:      time.Now,
	}
}

// Start begins a countdown of d, replacing any countdown in progress.
func (t *CountdownTimer) Start(d time.Duration) *Countdown {
	if d < 0 {
		d = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()
	c := newCountdown(d)
	t.current = c
	t.target = t.now().Add(d)
	t.paused = false
	t.evaluateLocked(c)
	return c
}

// Pause freezes the running countdown. It is a no-op when nothing is
// running or the countdown is already paused.
func (t *CountdownTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil || t.paused {
		return
	}
	remaining := t.target.Sub(t.now())
	if remaining <= 0 {
		// Already due; finish instead of freezing at zero.
		t.evaluateLocked(t.current)
		return
	}
	if t.wake != nil {
		t.wake.Stop()
		t.wake = nil
	}
	t.paused = true
	t.remaining = remaining
	t.current.setRemaining(remaining)
}

// Resume continues a paused countdown with the time left at Pause.
func (t *CountdownTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil || !t.paused || t.remaining <= 0 {
		return
	}
	t.paused = false
	t.target = t.now().Add(t.remaining)
	t.remaining = 0
	t.evaluateLocked(t.current)
}

// Stop cancels the countdown in progress. Once Stop returns, the cancelled
// countdown never completes.
func (t *CountdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Paused reports whether the current countdown is frozen.
func (t *CountdownTimer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil && t.paused
}

func (t *CountdownTimer) cancelLocked() {
	if t.wake != nil {
		t.wake.Stop()
		t.wake = nil
	}
	if t.current != nil {
		close(t.current.cancelled)
		t.current = nil
	}
	t.target = time.Time{}
	t.remaining = 0
	t.paused = false
}

func (t *CountdownTimer) wakeUp(c *Countdown, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A wake-up that lost the race with Stop, Pause, Resume or a new Start.
	if t.current != c || t.paused || t.wakeGen != gen {
		return
	}
	t.wake = nil
	t.evaluateLocked(c)
}

func (t *CountdownTimer) evaluateLocked(c *Countdown) {
	remaining := t.target.Sub(t.now())
	if remaining <= 0 {
		c.setRemaining(0)
		c.publish(0, true)
		close(c.done)
		if t.wake != nil {
			t.wake.Stop()
			t.wake = nil
		}
		t.current = nil
		t.target = time.Time{}
		return
	}

	c.setRemaining(remaining)
	c.publish(remaining, false)
	t.wakeGen++
	gen := t.wakeGen
	t.wake = time.AfterFunc(t.interval, func() { t.wakeUp(c, gen) })
}

// FormatClock renders a remaining duration as MM:SS, counting partial
// seconds as a full second.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
