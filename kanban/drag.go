package kanban

import "time"

// ArmDelay is how long the pointer must stay down before a press becomes a drag.
const ArmDelay = 200 * time.Millisecond

// Rect is the vertical extent of a rendered task.
type Rect struct {
	Top    int
	Bottom int
}

// ComputeDropPosition returns the insertion index whose boundary is closest to
// pointerY. Boundaries are compared in list order with a strict less-than, so
// the first closest one wins. With no rects the result is 0.
func ComputeDropPosition(pointerY int, rects []Rect) int {
	closest := len(rects)
	best := -1
	for i, r := range rects {
		if d := abs(pointerY - r.Top); best < 0 || d < best {
			best = d
			closest = i
		}
		if d := abs(pointerY - r.Bottom); d < best {
			best = d
			closest = i + 1
		}
	}
	return closest
}

// Indicator marks where a dragged task would land.
type Indicator struct {
	ColumnID string
	Index    int
}

// Gesture tracks one pointer-driven drag. A press arms after ArmDelay; the
// caller schedules the arm and hands back the sequence number it got from
// PointerDown so a stale timer cannot arm a later press.
type Gesture struct {
	seq       int
	pressed   bool
	armed     bool
	dragging  bool
	taskID    string
	column    string
	indicator *Indicator
}

// PointerDown records a press on a task and returns the arm sequence.
func (g *Gesture) PointerDown(taskID, columnID string) int {
	g.seq++
	g.pressed = true
	g.armed = false
	g.dragging = false
	g.taskID = taskID
	g.column = columnID
	g.indicator = nil
	return g.seq
}

// Arm marks the press as draggable if seq is still the live press.
func (g *Gesture) Arm(seq int) bool {
	if seq != g.seq || !g.pressed {
		return false
	}
	g.armed = true
	return true
}

// PointerUp releases the press. A release before arming cancels the arm.
func (g *Gesture) PointerUp() {
	g.pressed = false
	g.armed = false
}

// Begin turns an armed press into a drag.
func (g *Gesture) Begin() bool {
	if !g.armed {
		return false
	}
	g.dragging = true
	return true
}

// Over updates the drop indicator while dragging above a column.
func (g *Gesture) Over(columnID string, pointerY int, rects []Rect) {
	if !g.dragging {
		return
	}
	g.indicator = &Indicator{ColumnID: columnID, Index: ComputeDropPosition(pointerY, rects)}
}

// DropTarget is the insertion index for a drop on toColumn: the indicator
// when it targets that column, otherwise the end of the list.
func (g *Gesture) DropTarget(toColumn string, destLen int) int {
	if g.indicator != nil && g.indicator.ColumnID == toColumn {
		return g.indicator.Index
	}
	return destLen
}

// Cancel clears drag and indicator state. It is always safe to call.
func (g *Gesture) Cancel() {
	g.pressed = false
	g.armed = false
	g.dragging = false
	g.taskID = ""
	g.column = ""
	g.indicator = nil
}

// Dragging reports whether a drag is in progress.
func (g *Gesture) Dragging() bool { return g.dragging }

// Armed reports whether the current press may start a drag.
func (g *Gesture) Armed() bool { return g.armed }

// Source returns the dragged task and its column.
func (g *Gesture) Source() (taskID, columnID string) { return g.taskID, g.column }

// Indicator returns the current drop indicator.
func (g *Gesture) Indicator() (Indicator, bool) {
	if g.indicator == nil {
		return Indicator{}, false
	}
	return *g.indicator, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
