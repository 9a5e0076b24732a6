package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/runner"
)

var workoutsCmd = &cobra.Command{
	Use:   "workouts",
	Short: "List available workouts",
	Args:  cobra.NoArgs,
	RunE:  runWorkouts,
}

func init() {
	rootCmd.AddCommand(workoutsCmd)
}

func runWorkouts(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	return printWorkouts(cmd.OutOrStdout(), a.catalog.List())
}

func printWorkouts(out io.Writer, ws []domain.Workout) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXERCISES\tLENGTH")
	for _, w := range ws {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			w.ID, w.Name, len(w.Exercises), runner.FormatClock(secondsDuration(w.TotalSeconds())))
	}
	return tw.Flush()
}
