package app

import (
	"sync"

	"focusdeck/kanban"
	"focusdeck/model"
)

// Direction is a keyboard move of a board task.
type Direction int

const (
	MoveUp Direction = iota
	MoveDown
	MoveLeft
	MoveRight
)

// BoardService owns the kanban board. It is persisted under its own key,
// so it publishes to its own subscribers.
type BoardService struct {
	deps

	setMu sync.Mutex
	mu    sync.RWMutex
	board model.Board
	subs  observers[model.Board]
}

// NewBoardService creates a service with a copy of board.
func NewBoardService(board model.Board, opts ...Option) *BoardService {
	return &BoardService{deps: newDeps(opts), board: board.Clone()}
}

// Board returns a copy of the board.
func (b *BoardService) Board() model.Board {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.board.Clone()
}

// Subscribe registers fn for every new board and returns its cancel func.
func (b *BoardService) Subscribe(fn func(model.Board)) func() {
	return b.subs.add(fn)
}

func (b *BoardService) update(fn func(model.Board) (model.Board, error)) error {
	b.setMu.Lock()
	defer b.setMu.Unlock()

	next, err := fn(b.Board())
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.board = next
	b.mu.Unlock()
	b.subs.publish(next, model.Board.Clone)
	return nil
}

// AddTask appends a task to the column.
func (b *BoardService) AddTask(columnID, content, description string) (model.KanbanTask, error) {
	var task model.KanbanTask
	err := b.update(func(cur model.Board) (model.Board, error) {
		next, t, err := kanban.AddTask(cur, columnID, content, description, b.ids.New())
		task = t
		return next, err
	})
	return task, err
}

// UpdateTask patches a task.
func (b *BoardService) UpdateTask(taskID string, patch kanban.Patch) error {
	return b.update(func(cur model.Board) (model.Board, error) {
		return kanban.UpdateTask(cur, taskID, patch)
	})
}

// DeleteTask removes a task from the column.
func (b *BoardService) DeleteTask(columnID, taskID string) {
	_ = b.update(func(cur model.Board) (model.Board, error) {
		return kanban.DeleteTask(cur, columnID, taskID), nil
	})
}

// AddColumn appends an empty column.
func (b *BoardService) AddColumn(title string) (model.Column, error) {
	var col model.Column
	err := b.update(func(cur model.Board) (model.Board, error) {
		next, c, err := kanban.AddColumn(cur, title, b.ids.New())
		col = c
		return next, err
	})
	return col, err
}

// Drop moves a task, see kanban.Drop.
func (b *BoardService) Drop(taskID, fromColumn, toColumn string, index int) error {
	return b.update(func(cur model.Board) (model.Board, error) {
		return kanban.Drop(cur, taskID, fromColumn, toColumn, index)
	})
}

// Move shifts a task one step. Vertical moves reorder inside the column,
// horizontal ones keep the row where the neighbour column allows it. Moves
// past an edge change nothing.
func (b *BoardService) Move(taskID string, dir Direction) error {
	return b.update(func(cur model.Board) (model.Board, error) {
		col, pos, ok := kanban.Find(cur, taskID)
		if !ok {
			return cur, kanban.ErrTaskNotFound
		}
		from := cur.Columns[col].ID
		switch dir {
		case MoveUp:
			if pos == 0 {
				return cur, nil
			}
			return kanban.Drop(cur, taskID, from, from, pos-1)
		case MoveDown:
			if pos == len(cur.Columns[col].Tasks)-1 {
				return cur, nil
			}
			return kanban.Drop(cur, taskID, from, from, pos+1)
		case MoveLeft, MoveRight:
			target := col - 1
			if dir == MoveRight {
				target = col + 1
			}
			if target < 0 || target >= len(cur.Columns) {
				return cur, nil
			}
			dest := cur.Columns[target]
			return kanban.Drop(cur, taskID, from, dest.ID, min(pos, len(dest.Tasks)))
		}
		return cur, nil
	})
}
