package core

import (
	"time"

	"github.com/valter-silva-au/todo/pkg/models"
)

// DisplayColor is the logical color a renderer should use for a task.
type DisplayColor int

const (
	ColorDefault DisplayColor = iota
	ColorUrgent
	ColorSemiUrgent
	ColorNonUrgent
	ColorDone
	ColorOverdue
)

func (c DisplayColor) String() string {
	switch c {
	case ColorUrgent:
		return "red"
	case ColorSemiUrgent:
		return "yellow"
	case ColorNonUrgent:
		return "green"
	case ColorDone:
		return "blue"
	case ColorOverdue:
		return "magenta"
	default:
		return "default"
	}
}

// TaskView is one row handed to a renderer.
type TaskView struct {
	Task    models.Task
	Overdue bool
	Color   DisplayColor
}

// ColorFor assigns a color from the status and the overdue flag. Overdue
// wins over urgency for tasks that are not done.
func ColorFor(status models.Status, overdue bool) DisplayColor {
	kind := status.Kind()
	if overdue && kind != models.KindDone {
		return ColorOverdue
	}
	switch kind {
	case models.KindUrgent:
		return ColorUrgent
	case models.KindSemiUrgent:
		return ColorSemiUrgent
	case models.KindNonUrgent:
		return ColorNonUrgent
	case models.KindDone:
		return ColorDone
	default:
		return ColorDefault
	}
}

// View builds render rows for tasks in the given order.
func View(tasks []models.Task, asOf time.Time) []TaskView {
	rows := make([]TaskView, len(tasks))
	for i, t := range tasks {
		overdue := TaskOverdue(t, asOf)
		rows[i] = TaskView{Task: t, Overdue: overdue, Color: ColorFor(t.Status, overdue)}
	}
	return rows
}
