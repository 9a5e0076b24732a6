package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hperssn/microdesk/internal/runner"
	"github.com/hperssn/microdesk/internal/storage"
)

var logDate string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the sessions saved for a day",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVar(&logDate, "date", "", "day to show as YYYY-MM-DD (default today)")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	m := runner.NewManager(a.catalog, a.repo, runner.Options{Location: a.cfg.Location})
	date := logDate
	if date == "" {
		date = m.Today()
	}

	sessions, err := m.SessionsByDate(cmd.Context(), date)
	if err != nil {
		return err
	}
	return printSessions(cmd.OutOrStdout(), date, a.cfg.Location, sessions)
}

func printSessions(out io.Writer, date string, loc *time.Location, sessions []storage.SessionRecord) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintf(out, "No sessions on %s\n", date)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tWORKOUT\tSTATUS\tEXERCISES\tLENGTH")
	total := 0
	for _, s := range sessions {
		total += s.Seconds()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			s.StartedAt.In(loc).Format("15:04:05"),
			s.WorkoutName,
			s.Status,
			len(s.Exercises),
			runner.FormatClock(secondsDuration(s.Seconds())))
	}
	fmt.Fprintf(tw, "\t\t\t\t%s\n", runner.FormatClock(secondsDuration(total)))
	return tw.Flush()
}
