package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"focusdeck/app"
	"focusdeck/model"
)

const shortIDLen = 8

var errNothingToEdit = errors.New("nothing to change: pass --text, --group, --deadline or --clear-deadline")

func newTodoCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
	}
	cmd.AddCommand(newTodoAddCmd(a))
	cmd.AddCommand(newTodoListCmd(a))
	cmd.AddCommand(newTodoToggleCmd(a))
	cmd.AddCommand(newTodoEditCmd(a))
	return cmd
}

func newTodoAddCmd(a *App) *cobra.Command {
	var group, deadline string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			groupID, err := resolveGroup(w.svc, group)
			if err != nil {
				return err
			}
			var due *time.Time
			if deadline != "" {
				d, err := app.ParseDeadline(deadline, time.Now())
				if err != nil {
					return err
				}
				due = &d
			}
			todo, err := w.svc.AddTodo(strings.Join(args, " "), groupID)
			if err != nil {
				return err
			}
			if due != nil {
				if todo, err = w.svc.UpdateTodo(todo.ID, app.TodoPatch{Deadline: due}); err != nil {
					return err
				}
			}
			if err := w.saved(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", shortID(todo.ID), todo.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Group id or name (default: current)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Due date, as 2006-01-02 [15:04], 15:04 or tomorrow")
	return cmd
}

func newTodoListCmd(a *App) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			todos := w.svc.Todos()
			if group != "" {
				groupID, err := resolveGroup(w.svc, group)
				if err != nil {
					return err
				}
				todos = w.svc.TodosInGroup(groupID)
			}
			writeTodos(cmd.OutOrStdout(), todos, groupNames(w.svc.Groups()))
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Only list this group (id or name)")
	return cmd
}

func newTodoToggleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Complete or reopen a todo by id or unique id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			todo, err := w.svc.Todo(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			updated, err := w.svc.ToggleTodo(todo.ID)
			if err != nil {
				return err
			}
			if err := w.saved(); err != nil {
				return err
			}
			verb := "reopened"
			if updated.Completed {
				verb = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", verb, shortID(updated.ID), updated.Text)
			return nil
		},
	}
}

func newTodoEditCmd(a *App) *cobra.Command {
	var (
		text, group, deadline string
		clearDeadline         bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a todo's text, group or deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("text") && !flags.Changed("group") && !flags.Changed("deadline") && !clearDeadline {
				return errNothingToEdit
			}
			w, err := openWorkspace(a)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			todo, err := w.svc.Todo(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			var patch app.TodoPatch
			if flags.Changed("text") {
				patch.Text = &text
			}
			if flags.Changed("group") {
				g, err := w.svc.FindGroup(group)
				if err != nil {
					return err
				}
				patch.GroupID = &g.ID
			}
			if flags.Changed("deadline") {
				base := time.Now()
				if todo.Deadline != nil {
					base = todo.Deadline.Local()
				}
				d, err := app.ParseDeadline(deadline, base)
				if err != nil {
					return err
				}
				patch.Deadline = &d
			}
			patch.ClearDeadline = clearDeadline

			updated, err := w.svc.UpdateTodo(todo.ID, patch)
			if err != nil {
				return err
			}
			if err := w.saved(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", shortID(updated.ID), updated.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "New text")
	cmd.Flags().StringVar(&group, "group", "", "Move to this group (id or name)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "Due date, as 2006-01-02 [15:04], 15:04 or tomorrow")
	cmd.Flags().BoolVar(&clearDeadline, "clear-deadline", false, "Remove the deadline")
	cmd.MarkFlagsMutuallyExclusive("deadline", "clear-deadline")
	return cmd
}

// resolveGroup accepts a group id or a case-insensitive name. Empty means
// the current group.
func resolveGroup(svc *app.Service, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.GroupCurrent, nil
	}
	g, err := svc.FindGroup(ref)
	if err != nil {
		return "", err
	}
	return g.ID, nil
}

func groupNames(groups []model.Group) map[string]string {
	out := make(map[string]string, len(groups))
	for _, g := range groups {
		out[g.ID] = g.Name
	}
	return out
}

func writeTodos(w io.Writer, todos []model.TodoItem, groups map[string]string) {
	if len(todos) == 0 {
		fmt.Fprintln(w, "no todos")
		return
	}
	for _, t := range todos {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		group := groups[t.GroupID]
		if group == "" {
			group = groups[model.GroupCurrent]
		}
		fmt.Fprintf(w, "%-8s [%s] %s  (%s)\n", shortID(t.ID), mark, t.Text, group)
		for _, s := range t.Subtasks {
			sub := " "
			if s.Completed {
				sub = "x"
			}
			fmt.Fprintf(w, "%-8s     [%s] %s\n", "", sub, s.Text)
		}
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
