package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/runner"
	"github.com/hperssn/microdesk/internal/storage"
)

// fastSecond is the length of a workout second under --fast.
const fastSecond = 50 * time.Millisecond

var runFast bool

var runCmd = &cobra.Command{
	Use:   "run <workout-id>",
	Short: "Run a workout in the terminal; Ctrl-C stops and saves it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runFast, "fast", false, "run every second as 50ms (for trying out workouts)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	opts := runner.Options{
		TickInterval: a.cfg.TickInterval,
		Location:     a.cfg.Location,
	}
	if runFast {
		opts.Second = fastSecond
		opts.TickInterval = fastSecond / 5
	}
	m := runner.NewManager(a.catalog, a.repo, opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := runSession(ctx, m, args[0], cmd.OutOrStdout())
	if rec != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s: %d exercises in %s\n",
			rec.WorkoutName, rec.Status, len(rec.Exercises), runner.FormatClock(secondsDuration(rec.Seconds())))
	}
	return err
}

// runSession runs workoutID until it completes or ctx is cancelled, in which
// case the session is stopped. Progress is written to out.
func runSession(ctx context.Context, m *runner.Manager, workoutID string, out io.Writer) (*storage.SessionRecord, error) {
	events, cancel := m.Subscribe()
	defer cancel()

	snap, err := m.Start(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "%s (%d exercises)\n", snap.WorkoutName, snap.ExerciseCount)
	printPhase(out, snap.Phase, snap.Exercise)

	var completedID string
	for {
		select {
		case <-ctx.Done():
			rec, err := m.Stop(context.Background())
			if errors.Is(err, runner.ErrSessionNotFound) {
				// Finished on its own while we were stopping.
				return lastRecord(m, snap.SessionID), nil
			}
			return rec, err

		case ev, ok := <-events:
			if !ok {
				return nil, nil
			}
			if ev.SessionID != snap.SessionID {
				continue
			}
			switch ev.Type {
			case runner.EventTick:
				fmt.Fprintf(out, "\r  %s ", ev.Clock)
			case runner.EventPhaseChanged:
				fmt.Fprintln(out)
				printPhase(out, ev.Phase, ev.Exercise)
			case runner.EventSessionCompleted:
				completedID = ev.SessionID
			case runner.EventSessionSaved:
				if completedID != "" {
					return lastRecord(m, completedID), nil
				}
			case runner.EventSaveFailed:
				if completedID != "" {
					return lastRecord(m, completedID), fmt.Errorf("save session: %s", ev.Error)
				}
			}
		}
	}
}

func printPhase(out io.Writer, phase domain.Phase, exercise string) {
	if phase == domain.PhaseRest {
		fmt.Fprintln(out, "Rest")
		return
	}
	fmt.Fprintln(out, exercise)
}

// lastRecord finds a finished session among today's saved or pending
// records.
func lastRecord(m *runner.Manager, id string) *storage.SessionRecord {
	if sessions, err := m.SessionsByDate(context.Background(), m.Today()); err == nil {
		for i := range sessions {
			if sessions[i].ID == id {
				return &sessions[i]
			}
		}
	}
	for _, rec := range m.Pending() {
		if rec.ID == id {
			return &rec
		}
	}
	return nil
}

func secondsDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
