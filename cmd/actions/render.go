package main

import (
	"fmt"
	"strings"

	"actionTracker/internal/models/actionitem"
	"actionTracker/internal/notify"
	"actionTracker/internal/query"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f9fb0"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12"))
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")).Width(10)
	priorityStyle = lipgloss.NewStyle().Width(7)
	urgentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a")).Bold(true).Width(7)
	pillBaseStyle = lipgloss.NewStyle().Padding(0, 1).Width(12).Bold(true)
)

var statusPalette = map[actionitem.Status]string{
	actionitem.StatusOpen:      "#5f9fb0",
	actionitem.StatusInProcess: "#7c6ff0",
	actionitem.StatusOnHold:    "#f39c12",
	actionitem.StatusClosed:    "#6c757d",
}

func statusPill(s actionitem.Status) string {
	color, ok := statusPalette[s]
	if !ok {
		color = "#6c757d"
	}
	return pillBaseStyle.Foreground(lipgloss.Color(color)).Render(string(s))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func people(ps []actionitem.Person) string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// renderRow prints one item on a single line.
func renderRow(it actionitem.Item) string {
	prio := priorityStyle.Render(string(it.Priority))
	if it.Priority == actionitem.PriorityUrgent {
		prio = urgentStyle.Render(string(it.Priority))
	}

	meta := []string{string(it.Category), "→ " + people(it.AssignedTo)}
	if due := it.EffectiveDueDate(); due != "" {
		meta = append(meta, "due "+due)
	}

	return fmt.Sprintf("%s %s %s %s  %s",
		idStyle.Render(shortID(it.ID)),
		statusPill(it.Status),
		prio,
		titleStyle.Render(it.Title),
		mutedStyle.Render(strings.Join(meta, " · ")),
	)
}

func renderStats(st query.Stats) string {
	return strings.Join([]string{
		titleStyle.Render(fmt.Sprintf("Total %d", st.Total)),
		statusPill(actionitem.StatusOpen) + fmt.Sprint(st.Open),
		statusPill(actionitem.StatusInProcess) + fmt.Sprint(st.InProcess),
		statusPill(actionitem.StatusOnHold) + fmt.Sprint(st.OnHold),
		statusPill(actionitem.StatusClosed) + fmt.Sprint(st.Closed),
	}, "  ")
}

func renderToast(n notify.Notification) string {
	switch n.Level {
	case notify.LevelError:
		return errorStyle.Render(n.Message)
	case notify.LevelWarning:
		return warnStyle.Render(n.Message)
	default:
		return infoStyle.Render(n.Message)
	}
}
