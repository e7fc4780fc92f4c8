package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// Pager shows pre-rendered text in a scrollable viewport with a scrollbar
// when the text is taller than the viewport.
type Pager struct {
	viewport viewport.Model
	content  string
	ready    bool
}

func NewPager(content string) *Pager {
	return &Pager{content: content}
}

func (p *Pager) SetSize(width, height int) {
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !p.ready {
		p.viewport = viewport.New(vpWidth, height)
		p.ready = true
	} else {
		p.viewport.Width = vpWidth
		p.viewport.Height = height
	}
	p.viewport.SetContent(p.content)
}

func (p *Pager) SetContent(content string) {
	p.content = content
	if p.ready {
		p.viewport.SetContent(content)
	}
}

func (p *Pager) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

func (p *Pager) View() string {
	if !p.ready {
		return ""
	}

	if p.viewport.TotalLineCount() <= p.viewport.Height {
		return p.viewport.View()
	}

	h := p.viewport.Height
	handlePos := int(float64(h-1) * p.viewport.ScrollPercent())

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, p.viewport.View(), sb.String())
}

func (p *Pager) AtBottom() bool {
	return p.viewport.AtBottom()
}

func (p *Pager) Height() int {
	return p.viewport.Height
}
