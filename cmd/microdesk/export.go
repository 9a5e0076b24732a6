package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hperssn/microdesk/internal/config"
	"github.com/hperssn/microdesk/internal/export"
	"github.com/hperssn/microdesk/internal/runner"
)

var (
	exportDate string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a day's sessions as a TCX file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "day to export as YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, - for stdout (default microdesk_<date>.tcx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	m := runner.NewManager(a.catalog, a.repo, runner.Options{Location: a.cfg.Location})
	date := exportDate
	if date == "" {
		date = m.Today()
	}

	doc, err := m.Export(cmd.Context(), date)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = export.Filename(config.AppName, date)
	}
	if out == "-" {
		_, err := cmd.OutOrStdout().Write(doc)
		return err
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
	return nil
}
