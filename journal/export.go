package journal

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"focusdeck/kanban"
	"focusdeck/model"
	"focusdeck/timer"
)

const separator = "---\n"

type frontmatter struct {
	Date                string `yaml:"date"`
	FocusMinutes        int    `yaml:"focus_minutes"`
	Sessions            int    `yaml:"sessions"`
	Streak              int    `yaml:"streak"`
	TasksCompletedToday int    `yaml:"tasks_completed_today"`
	Pending             int    `yaml:"pending"`
	BoardTasks          int    `yaml:"board_tasks"`
}

// Render returns the daily markdown document: YAML frontmatter with the
// summary, then the notes, today's sessions, open todos and the board.
func Render(state model.AppState, board model.Board, sum Summary) (string, error) {
	meta := frontmatter{
		Date:                sum.Date.Format("2006-01-02"),
		FocusMinutes:        sum.FocusMinutes,
		Sessions:            len(sum.Sessions),
		Streak:              sum.Streak,
		TasksCompletedToday: sum.CompletedToday,
		Pending:             sum.Pending,
		BoardTasks:          kanban.Count(board),
	}
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	buf := bytes.Buffer{}
	buf.WriteString(separator)
	buf.Write(raw)
	buf.WriteString(separator)
	fmt.Fprintf(&buf, "\n# Journal %s\n", meta.Date)

	buf.WriteString("\n## Notes\n\n")
	if notes := strings.TrimSpace(state.Notes); notes != "" {
		buf.WriteString(notes)
		buf.WriteString("\n")
	} else {
		buf.WriteString("_No notes._\n")
	}

	buf.WriteString("\n## Sessions\n\n")
	if len(sum.Sessions) == 0 {
		buf.WriteString("_No sessions today._\n")
	}
	for _, s := range sum.Sessions {
		label := strings.ToLower(string(s.Mode))
		if s.Name != "" {
			label = s.Name
		}
		fmt.Fprintf(&buf, "- %s %s (%s)\n", s.Date.In(sum.Date.Location()).Format("15:04"), timer.Format(s.Duration), label)
	}

	buf.WriteString("\n## Open todos\n\n")
	open := 0
	for _, t := range state.Todos {
		if t.Completed {
			continue
		}
		open++
		fmt.Fprintf(&buf, "- [ ] %s\n", t.Text)
		for _, st := range t.Subtasks {
			mark := " "
			if st.Completed {
				mark = "x"
			}
			fmt.Fprintf(&buf, "  - [%s] %s\n", mark, st.Text)
		}
	}
	if open == 0 {
		buf.WriteString("_Nothing pending._\n")
	}

	buf.WriteString("\n## Board\n")
	for _, col := range board.Columns {
		fmt.Fprintf(&buf, "\n### %s (%d)\n\n", col.Title, len(col.Tasks))
		for _, task := range col.Tasks {
			fmt.Fprintf(&buf, "- %s\n", task.Content)
		}
	}
	return buf.String(), nil
}

// Export writes the document for the day holding now.
func Export(w io.Writer, state model.AppState, board model.Board, now time.Time) error {
	doc, err := Render(state, board, Compute(state, now))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, doc)
	return err
}
