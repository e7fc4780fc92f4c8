// Package components holds lipgloss renderers shared by the CLI commands.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/tasker/pkg/models"
)

var (
	activeBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	backlogBoxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	subTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

// ProjectBoard renders one project as an active box and a backlog box.
type ProjectBoard struct {
	Project *models.Project
	Width   int
}

func NewProjectBoard(p *models.Project, width int) *ProjectBoard {
	return &ProjectBoard{Project: p, Width: width}
}

func (b *ProjectBoard) View() string {
	p := b.Project
	title := headerStyle.Render(fmt.Sprintf("%s  (%s)", p.Name, p.ID))

	var boxes []string
	if len(p.Tasks) > 0 {
		boxes = append(boxes, b.renderBox("Active", p.Tasks, activeBoxStyle))
	}
	if len(p.Backlog) > 0 {
		boxes = append(boxes, b.renderBox("Backlog", p.Backlog, backlogBoxStyle))
	}
	if len(boxes) == 0 {
		return title + "\n" + placeholderStyle.Render("No tasks yet")
	}
	return title + "\n" + strings.Join(boxes, "\n")
}

func (b *ProjectBoard) renderBox(title string, tasks []*models.Task, style lipgloss.Style) string {
	subTitle := subTitleStyle.Foreground(style.GetForeground()).Render(fmt.Sprintf("%s (%d)", title, len(tasks)))

	nameWidth := max(b.Width-6, 0)

	var lines []string
	for _, t := range tasks {
		wrapped := lipgloss.NewStyle().Width(nameWidth).Render(taskLine(t))
		for i, line := range strings.Split(wrapped, "\n") {
			if i == 0 {
				lines = append(lines, fmt.Sprintf("%s %s", statusIcon(t.Status), line))
			} else {
				lines = append(lines, "  "+line)
			}
		}
		for _, st := range t.Subtasks {
			lines = append(lines, fmt.Sprintf("    %s %s", statusIcon(st.Status), st.Name))
		}
	}

	return style.Width(max(b.Width-2, 0)).Render(subTitle + "\n" + strings.Join(lines, "\n"))
}

func taskLine(t *models.Task) string {
	var meta []string
	if t.Status != "" {
		meta = append(meta, t.Status)
	}
	if !t.DueDate.IsZero() {
		meta = append(meta, "due "+t.DueDate.String())
	}
	if t.Difficulty != "" {
		meta = append(meta, t.Difficulty)
	}
	if len(meta) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s [%s]", t.Name, strings.Join(meta, ", "))
}

func statusIcon(status string) string {
	switch strings.ToUpper(status) {
	case "DONE", "COMPLETE", "COMPLETED":
		return "✓"
	case "BLOCKED":
		return "✗"
	default:
		return "•"
	}
}

// Summary is a one-line count of a project's tasks, used by list views.
func Summary(p *models.Project) string {
	done := 0
	for _, t := range p.Tasks {
		if statusIcon(t.Status) == "✓" {
			done++
		}
	}
	return fmt.Sprintf("%d/%d active done, %d in backlog", done, len(p.Tasks), len(p.Backlog))
}
