package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"focusdeck/app"
)

func newPomodoroCmd(a *App) *cobra.Command {
	var (
		work, brk int
		autoBreak bool
	)
	cmd := &cobra.Command{
		Use:   "pomodoro",
		Short: "Show or change pomodoro durations",
		Long:  "Without flags, prints the current settings. Durations are in minutes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			var patch app.SettingsPatch
			flags := cmd.Flags()
			if flags.Changed("work") {
				patch.Work = &work
			}
			if flags.Changed("break") {
				patch.Break = &brk
			}
			if flags.Changed("auto-break") {
				patch.AutoStartBreak = &autoBreak
			}
			settings := w.svc.State().PomodoroSettings
			if patch != (app.SettingsPatch{}) {
				if settings, err = w.svc.SetPomodoroSettings(patch); err != nil {
					return err
				}
				if err := w.saved(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "work:       %d min\n", settings.Work)
			fmt.Fprintf(out, "break:      %d min\n", settings.Break)
			fmt.Fprintf(out, "auto-break: %t\n", settings.AutoStartBreak)
			return nil
		},
	}
	cmd.Flags().IntVar(&work, "work", 0, "Work session length in minutes")
	cmd.Flags().IntVar(&brk, "break", 0, "Break length in minutes")
	cmd.Flags().BoolVar(&autoBreak, "auto-break", false, "Start the break timer as soon as a work session ends")
	return cmd
}
