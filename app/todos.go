package app

import (
	"fmt"
	"strings"
	"time"

	"focusdeck/model"
)

const defaultCategory = "General"

// TodoPatch carries optional todo field updates. ClearDeadline wins over Deadline.
type TodoPatch struct {
	Text          *string
	GroupID       *string
	Deadline      *time.Time
	ClearDeadline bool
	Link          *string
	Category      *string
}

// Todos returns every todo in list order.
func (s *Service) Todos() []model.TodoItem {
	return s.State().Todos
}

// Groups returns every group, system groups first.
func (s *Service) Groups() []model.Group {
	return s.State().Groups
}

// TodosInGroup filters todos by group. Todos whose group no longer exists
// are listed under the current group.
func (s *Service) TodosInGroup(groupID string) []model.TodoItem {
	st := s.State()
	known := make(map[string]bool, len(st.Groups))
	for _, g := range st.Groups {
		known[g.ID] = true
	}
	out := make([]model.TodoItem, 0)
	for _, t := range st.Todos {
		gid := t.GroupID
		if gid == "" || !known[gid] {
			gid = model.GroupCurrent
		}
		if gid == groupID {
			out = append(out, t)
		}
	}
	return out
}

// FindGroup returns the group whose id equals ref or whose name matches it
// case-insensitively.
func (s *Service) FindGroup(ref string) (model.Group, error) {
	ref = strings.TrimSpace(ref)
	for _, g := range s.Groups() {
		if g.ID == ref || strings.EqualFold(g.Name, ref) {
			return g, nil
		}
	}
	return model.Group{}, fmt.Errorf("%s: %w", ref, ErrGroupNotFound)
}

// Todo returns the todo whose id equals ref or uniquely starts with it.
func (s *Service) Todo(ref string) (model.TodoItem, error) {
	st := s.State()
	idx, err := resolveTodo(st.Todos, ref)
	if err != nil {
		return model.TodoItem{}, err
	}
	return st.Todos[idx], nil
}

// AddTodo creates an open todo in groupID, or in the current group when empty.
func (s *Service) AddTodo(text, groupID string) (model.TodoItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.TodoItem{}, ErrEmptyText
	}
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		groupID = model.GroupCurrent
	}
	todo := model.TodoItem{
		ID:       s.ids.New(),
		Text:     text,
		Category: defaultCategory,
		GroupID:  groupID,
	}
	err := s.update(func(st *model.AppState) error {
		st.Todos = append(st.Todos, todo)
		return nil
	})
	return todo, err
}

// ToggleTodo flips completion. Completing files the todo under finished and
// stamps completedAt; reopening files it under current and clears the stamp.
func (s *Service) ToggleTodo(id string) (model.TodoItem, error) {
	var out model.TodoItem
	err := s.update(func(st *model.AppState) error {
		i := todoIndex(st.Todos, id)
		if i < 0 {
			return ErrTodoNotFound
		}
		t := &st.Todos[i]
		t.Completed = !t.Completed
		if t.Completed {
			now := s.now()
			t.CompletedAt = &now
			t.GroupID = model.GroupFinished
		} else {
			t.CompletedAt = nil
			t.GroupID = model.GroupCurrent
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

// UpdateTodo merges patch into the todo.
func (s *Service) UpdateTodo(id string, patch TodoPatch) (model.TodoItem, error) {
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return model.TodoItem{}, ErrEmptyText
	}
	var out model.TodoItem
	err := s.update(func(st *model.AppState) error {
		i := todoIndex(st.Todos, id)
		if i < 0 {
			return ErrTodoNotFound
		}
		t := &st.Todos[i]
		if patch.Text != nil {
			t.Text = strings.TrimSpace(*patch.Text)
		}
		if patch.GroupID != nil {
			t.GroupID = strings.TrimSpace(*patch.GroupID)
			if t.GroupID == "" {
				t.GroupID = model.GroupCurrent
			}
		}
		if patch.Deadline != nil {
			d := *patch.Deadline
			t.Deadline = &d
		}
		if patch.ClearDeadline {
			t.Deadline = nil
		}
		if patch.Link != nil {
			t.Link = strings.TrimSpace(*patch.Link)
		}
		if patch.Category != nil {
			t.Category = strings.TrimSpace(*patch.Category)
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

// DeleteTodo removes the todo. Unknown ids are ignored.
func (s *Service) DeleteTodo(id string) {
	_ = s.update(func(st *model.AppState) error {
		st.Todos = filterTodos(st.Todos, func(t model.TodoItem) bool { return t.ID != id })
		return nil
	})
}

// ClearCompleted removes completed todos and returns how many went away.
func (s *Service) ClearCompleted() int {
	removed := 0
	_ = s.update(func(st *model.AppState) error {
		before := len(st.Todos)
		st.Todos = filterTodos(st.Todos, func(t model.TodoItem) bool { return !t.Completed })
		removed = before - len(st.Todos)
		return nil
	})
	return removed
}

// ClearAllTodos removes every todo and returns how many went away.
func (s *Service) ClearAllTodos() int {
	removed := 0
	_ = s.update(func(st *model.AppState) error {
		removed = len(st.Todos)
		st.Todos = []model.TodoItem{}
		return nil
	})
	return removed
}

// FocusOnTodo names the session after the todo and switches to the timer.
func (s *Service) FocusOnTodo(id string) error {
	return s.update(func(st *model.AppState) error {
		i := todoIndex(st.Todos, id)
		if i < 0 {
			return ErrTodoNotFound
		}
		st.SessionName = st.Todos[i].Text
		st.CurrentView = model.ViewFocus
		return nil
	})
}

// AddGroup creates a custom group.
func (s *Service) AddGroup(name string) (model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Group{}, ErrInvalidName
	}
	g := model.Group{ID: s.ids.New(), Name: name, Type: model.GroupCustom}
	err := s.update(func(st *model.AppState) error {
		st.Groups = append(st.Groups, g)
		return nil
	})
	return g, err
}

// DeleteGroup removes a custom group. Its todos keep their group id.
func (s *Service) DeleteGroup(id string) error {
	return s.update(func(st *model.AppState) error {
		for i, g := range st.Groups {
			if g.ID != id {
				continue
			}
			if g.Type == model.GroupSystem {
				return ErrSystemGroup
			}
			st.Groups = append(st.Groups[:i:i], st.Groups[i+1:]...)
			return nil
		}
		return ErrGroupNotFound
	})
}

// AddSubtask appends an open subtask to the todo.
func (s *Service) AddSubtask(todoID, text string) (model.Subtask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Subtask{}, ErrEmptyText
	}
	sub := model.Subtask{ID: s.ids.New(), Text: text}
	err := s.update(func(st *model.AppState) error {
		i := todoIndex(st.Todos, todoID)
		if i < 0 {
			return ErrTodoNotFound
		}
		st.Todos[i].Subtasks = append(st.Todos[i].Subtasks, sub)
		return nil
	})
	return sub, err
}

// ToggleSubtask flips a subtask of the todo. Unknown subtask ids are ignored.
func (s *Service) ToggleSubtask(todoID, subtaskID string) error {
	return s.update(func(st *model.AppState) error {
		i := todoIndex(st.Todos, todoID)
		if i < 0 {
			return ErrTodoNotFound
		}
		for j := range st.Todos[i].Subtasks {
			if st.Todos[i].Subtasks[j].ID == subtaskID {
				st.Todos[i].Subtasks[j].Completed = !st.Todos[i].Subtasks[j].Completed
			}
		}
		return nil
	})
}

// DeleteSubtask removes a subtask of the todo. Unknown subtask ids are ignored.
func (s *Service) DeleteSubtask(todoID, subtaskID string) error {
	return s.update(func(st *model.AppState) error {
		i := todoIndex(st.Todos, todoID)
		if i < 0 {
			return ErrTodoNotFound
		}
		subs := st.Todos[i].Subtasks
		kept := make([]model.Subtask, 0, len(subs))
		for _, sub := range subs {
			if sub.ID != subtaskID {
				kept = append(kept, sub)
			}
		}
		st.Todos[i].Subtasks = kept
		return nil
	})
}

func todoIndex(todos []model.TodoItem, id string) int {
	for i := range todos {
		if todos[i].ID == id {
			return i
		}
	}
	return -1
}

func resolveTodo(todos []model.TodoItem, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, ErrTodoNotFound
	}
	if i := todoIndex(todos, ref); i >= 0 {
		return i, nil
	}
	match := -1
	for i := range todos {
		if strings.HasPrefix(todos[i].ID, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, ErrTodoNotFound
	}
	return match, nil
}

func filterTodos(todos []model.TodoItem, keep func(model.TodoItem) bool) []model.TodoItem {
	out := make([]model.TodoItem, 0, len(todos))
	for _, t := range todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
