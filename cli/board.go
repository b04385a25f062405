package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"focusdeck/kanban"
	"focusdeck/model"
)

func newBoardCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect and edit the kanban board",
	}
	cmd.AddCommand(newBoardListCmd(a))
	cmd.AddCommand(newBoardAddCmd(a))
	return cmd
}

func newBoardListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List columns and their cards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			out := cmd.OutOrStdout()
			for i, col := range w.board.Board().Columns {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s [%s] (%d)\n", col.Title, col.ID, len(col.Tasks))
				for _, task := range col.Tasks {
					fmt.Fprintf(out, "  - %s\n", task.Content)
				}
			}
			return nil
		},
	}
}

func newBoardAddCmd(a *App) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <column> <content>",
		Short: "Add a card to a column (id or title)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			col, err := resolveColumn(w.board.Board(), args[0])
			if err != nil {
				return err
			}
			task, err := w.board.AddTask(col.ID, strings.Join(args[1:], " "), description)
			if err != nil {
				return err
			}
			if err := w.saved(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q to %s\n", task.Content, col.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Card description")
	return cmd
}

func resolveColumn(b model.Board, ref string) (model.Column, error) {
	ref = strings.TrimSpace(ref)
	if i := kanban.ColumnIndex(b, ref); i >= 0 {
		return b.Columns[i], nil
	}
	for _, col := range b.Columns {
		if strings.EqualFold(col.Title, ref) {
			return col, nil
		}
	}
	return model.Column{}, fmt.Errorf("%s: %w", ref, kanban.ErrColumnNotFound)
}
