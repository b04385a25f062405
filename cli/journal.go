package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"focusdeck/journal"
	"focusdeck/timer"
)

func newStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's focus summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			sum := journal.Compute(w.svc.State(), time.Now())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "date:      %s\n", sum.Date.Format("2006-01-02"))
			fmt.Fprintf(out, "focus:     %d min (%s)\n", sum.FocusMinutes, timer.Format(sum.FocusSeconds))
			fmt.Fprintf(out, "sessions:  %d\n", len(sum.Sessions))
			fmt.Fprintf(out, "streak:    %d\n", sum.Streak)
			fmt.Fprintf(out, "completed: %d\n", sum.CompletedToday)
			fmt.Fprintf(out, "pending:   %d\n", sum.Pending)
			fmt.Fprintf(out, "day:       %d%% (%d min left)\n", sum.DayProgress, sum.RemainingMinutes)
			return nil
		},
	}
}

func newExportCmd(a *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write today's journal as markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			if output == "" || output == "-" {
				return journal.Export(cmd.OutOrStdout(), w.svc.State(), w.board.Board(), time.Now())
			}
			return exportToFile(output, func(dst io.Writer) error {
				return journal.Export(dst, w.svc.State(), w.board.Board(), time.Now())
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func exportToFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write export: %w", err)
	}
	return f.Close()
}
