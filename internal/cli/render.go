package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// Task colors, keyed by core.DisplayColor.
var taskStyles = map[core.DisplayColor]lipgloss.Style{
	core.ColorUrgent:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	core.ColorSemiUrgent: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	core.ColorNonUrgent:  lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	core.ColorDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
	core.ColorOverdue:    lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true),
}

func styleFor(c core.DisplayColor) lipgloss.Style {
	if s, ok := taskStyles[c]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// colorEnabled reports whether output should be styled. --no-color wins
// over display.color in .todoconfig.
func colorEnabled() bool {
	if noColor {
		return false
	}
	return Config == nil || Config.Color
}

func paint(c core.DisplayColor, s string) string {
	if !colorEnabled() {
		return s
	}
	return styleFor(c).Render(s)
}

// formatTaskLine renders "N. name - status (Due: date)" with an overdue
// marker when it applies.
func formatTaskLine(position int, v core.TaskView) string {
	line := fmt.Sprintf("%d. %s - %s (Due: %s)", position, v.Task.Name, v.Task.Status, v.Task.DueDate)
	if v.Overdue {
		line += " [OVERDUE]"
	}
	return paint(v.Color, line)
}

func formatArchivedLine(position int, a models.ArchivedTask) string {
	line := fmt.Sprintf("%d. %s - %s (Due: %s) [Completed: %s]",
		position, a.Name, a.Status, a.DueDate, a.CompletionDate)
	return paint(core.ColorFor(a.Status, false), line)
}

// renderTasks writes one numbered line per view, numbering from 1.
func renderTasks(w io.Writer, views []core.TaskView) {
	for i, v := range views {
		_, _ = fmt.Fprintln(w, formatTaskLine(i+1, v))
	}
}

func renderArchived(w io.Writer, entries []models.ArchivedTask) {
	for i, a := range entries {
		_, _ = fmt.Fprintln(w, formatArchivedLine(i+1, a))
	}
}

func renderStatistics(w io.Writer, s core.Statistics) {
	_, _ = fmt.Fprintln(w, "=== Task Statistics ===")
	_, _ = fmt.Fprintf(w, "Active tasks: %d\n", s.ActiveCount)
	_, _ = fmt.Fprintf(w, "Completed (archived): %d\n", s.CompletedCount)
	_, _ = fmt.Fprintf(w, "Total all-time tasks: %d\n", s.TotalCount)
	_, _ = fmt.Fprintf(w, "Urgent tasks: %d\n", s.UrgentCount)
	_, _ = fmt.Fprintf(w, "Overdue tasks: %s\n", paint(core.ColorOverdue, fmt.Sprint(s.OverdueCount)))
	if s.CompletionRate != nil {
		_, _ = fmt.Fprintf(w, "All-time completion rate: %.1f%%\n", *s.CompletionRate)
	}
}
