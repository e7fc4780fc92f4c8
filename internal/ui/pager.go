package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ldi/tasker/internal/ui/components"
)

var (
	pagerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pagerHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// PagerModel is a full-screen scrollable view of a rendered report.
type PagerModel struct {
	title string
	pager *components.Pager
}

func NewPagerModel(title, content string) PagerModel {
	return PagerModel{title: title, pager: components.NewPager(content)}
}

func (m PagerModel) Init() tea.Cmd {
	return nil
}

func (m PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		// title and help line
		m.pager.SetSize(msg.Width, max(msg.Height-2, 1))
		return m, nil
	}
	return m, m.pager.Update(msg)
}

func (m PagerModel) View() string {
	return pagerTitleStyle.Render(m.title) + "\n" +
		m.pager.View() + "\n" +
		pagerHelpStyle.Render("(use arrow keys, j/k or pgup/pgdown to scroll, q to quit)")
}

// RunPager shows content in the alternate screen until the user quits.
func RunPager(title, content string) error {
	p := tea.NewProgram(NewPagerModel(title, content), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
