// Package kanban implements the board reducer and the pointer math used to
// reorder tasks by dragging. Board operations never modify their input.
package kanban

import (
	"errors"
	"strings"

	"focusdeck/model"
)

var (
	ErrEmptyContent   = errors.New("task title cannot be empty")
	ErrEmptyTitle     = errors.New("column title cannot be empty")
	ErrColumnNotFound = errors.New("column not found")
	ErrColumnExists   = errors.New("column already exists")
	ErrTaskNotFound   = errors.New("task not found")
	ErrMalformedDrop  = errors.New("malformed drop")
)

// Patch carries optional task field updates.
type Patch struct {
	Content     *string
	Description *string
}

// AddTask appends a task to the column. Content is trimmed and must not be empty.
func AddTask(b model.Board, columnID, content, description, id string) (model.Board, model.KanbanTask, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return b, model.KanbanTask{}, ErrEmptyContent
	}
	idx := columnIndex(b, columnID)
	if idx < 0 {
		return b, model.KanbanTask{}, ErrColumnNotFound
	}
	task := model.KanbanTask{ID: id, Content: content, Description: strings.TrimSpace(description)}
	out := b.Clone()
	out.Columns[idx].Tasks = append(out.Columns[idx].Tasks, task)
	return out, task, nil
}

// UpdateTask applies patch to the task wherever it lives.
func UpdateTask(b model.Board, taskID string, patch Patch) (model.Board, error) {
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return b, ErrEmptyContent
	}
	col, pos, ok := Find(b, taskID)
	if !ok {
		return b, ErrTaskNotFound
	}
	out := b.Clone()
	task := &out.Columns[col].Tasks[pos]
	if patch.Content != nil {
		task.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	return out, nil
}

// DeleteTask removes the task from the column. Unknown ids are ignored.
func DeleteTask(b model.Board, columnID, taskID string) model.Board {
	idx := columnIndex(b, columnID)
	if idx < 0 {
		return b
	}
	out := b.Clone()
	tasks := out.Columns[idx].Tasks[:0]
	for _, t := range out.Columns[idx].Tasks {
		if t.ID != taskID {
			tasks = append(tasks, t)
		}
	}
	out.Columns[idx].Tasks = tasks
	return out
}

// AddColumn appends an empty column.
func AddColumn(b model.Board, title, id string) (model.Board, model.Column, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return b, model.Column{}, ErrEmptyTitle
	}
	if columnIndex(b, id) >= 0 {
		return b, model.Column{}, ErrColumnExists
	}
	col := model.Column{ID: id, Title: title, Tasks: []model.KanbanTask{}}
	out := b.Clone()
	out.Columns = append(out.Columns, col)
	return out, col, nil
}

// Drop moves a task from one column to another, inserting it at index in the
// destination list as it looks after the task was removed. The index is used
// as given (clamped to the list bounds); callers compute it against the
// rendered layout. An unknown column, or a task missing from the source
// column, leaves the board untouched.
func Drop(b model.Board, taskID, fromColumn, toColumn string, index int) (model.Board, error) {
	from := columnIndex(b, fromColumn)
	to := columnIndex(b, toColumn)
	if from < 0 || to < 0 {
		return b, ErrMalformedDrop
	}
	pos := taskIndex(b.Columns[from].Tasks, taskID)
	if pos < 0 {
		return b, ErrMalformedDrop
	}

	out := b.Clone()
	task := out.Columns[from].Tasks[pos]
	src := out.Columns[from].Tasks
	out.Columns[from].Tasks = append(src[:pos:pos], src[pos+1:]...)

	dst := out.Columns[to].Tasks
	index = max(0, min(index, len(dst)))
	inserted := make([]model.KanbanTask, 0, len(dst)+1)
	inserted = append(inserted, dst[:index]...)
	inserted = append(inserted, task)
	inserted = append(inserted, dst[index:]...)
	out.Columns[to].Tasks = inserted
	return out, nil
}

// Find locates a task. It returns the column index and the position inside it.
func Find(b model.Board, taskID string) (int, int, bool) {
	for c := range b.Columns {
		if p := taskIndex(b.Columns[c].Tasks, taskID); p >= 0 {
			return c, p, true
		}
	}
	return -1, -1, false
}

// Count is the number of tasks across all columns.
func Count(b model.Board) int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}

// ColumnIndex returns the position of the column with id, or -1.
func ColumnIndex(b model.Board, id string) int {
	return columnIndex(b, id)
}

func columnIndex(b model.Board, id string) int {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

func taskIndex(tasks []model.KanbanTask, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
