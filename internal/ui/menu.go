package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("12")).Bold(true)
	descStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const logo = `
 ████████                    █████
░░░███░░                    ░░███
  ░███   ██████    █████     ░███ █████  ██████  ████████
  ░███  ░░░░░███  ███░░      ░███░░███  ███░░███░░███░░███
  ░███   ███████ ░░█████     ░██████░  ░███████  ░███ ░░░
  ░███  ███░░███  ░░░░███    ░███░░███ ░███░░░   ░███
  █████░░████████ ██████     ████ █████░░██████  █████
 ░░░░░  ░░░░░░░░ ░░░░░░     ░░░░ ░░░░░  ░░░░░░  ░░░░░
`

// Choice is one entry of the command menu.
type Choice struct {
	Name        string
	Description string
}

type MenuModel struct {
	choices  []Choice
	cursor   int
	selected string
	quitting bool
}

func NewMenuModel(choices []Choice) MenuModel {
	return MenuModel{choices: choices}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			if len(m.choices) > 0 {
				m.cursor = len(m.choices) - 1
			}

		case "enter":
			if len(m.choices) > 0 {
				m.selected = m.choices[m.cursor].Name
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(logoStyle.Render(logo))
	s.WriteString("\n\n")

	width := 0
	for _, c := range m.choices {
		width = max(width, len(c.Name))
	}

	for i, choice := range m.choices {
		line := fmt.Sprintf("%-*s  %s", width, choice.Name, descStyle.Render(choice.Description))
		if m.cursor == i {
			s.WriteString(selectedItemStyle.Render("> " + line))
		} else {
			s.WriteString(itemStyle.Render("  " + line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n(use arrow keys or j/k to navigate, enter to select, q to quit)\n")

	return s.String()
}

func (m MenuModel) Selected() string {
	return m.selected
}

// RunMenu shows the menu and returns the chosen command name, or "" if the
// user quit.
func RunMenu(choices []Choice) (string, error) {
	m := NewMenuModel(choices)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	return finalModel.(MenuModel).Selected(), nil
}
