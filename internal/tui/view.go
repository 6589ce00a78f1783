package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmoralesp/turnero/internal/domain"
)

const (
	defaultWidth = 80
	timeWidth    = 7
	statusWidth  = 12
	nameWidth    = 20
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11")).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	recentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// View renders the dashboard.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.alerts.BannerVisible() {
		b.WriteString(bannerStyle.Render("● Hay cambios nuevos"))
		b.WriteString("\n")
	}

	if m.snapshot == nil {
		b.WriteString(dimStyle.Render("Sincronizando..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderRecords())
		b.WriteString(m.renderStats())
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderHeader() string {
	sound := "sound off"
	if m.tones.Unlocked() {
		sound = "sound on"
	}
	countdown := fmt.Sprintf("next sync %ds", int(m.loop.Remaining().Seconds()))
	title := headerStyle.Render("turnero · " + m.vertical.Name)
	return title + "  " + dimStyle.Render(countdown+" · "+sound)
}

func (m *Model) renderRecords() string {
	var b strings.Builder
	for i, record := range m.snapshot.Records {
		b.WriteString(m.renderRow(record, i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.snapshot.Records) == 0 {
		b.WriteString(dimStyle.Render("(sin registros)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderRow(record domain.Record, selected bool) string {
	line := fmt.Sprintf("%-*s %-*s %-*s %s",
		timeWidth, record.Time,
		nameWidth, truncate(record.Customer, nameWidth),
		statusWidth, record.Status,
		truncate(record.Detail, m.width-timeWidth-nameWidth-statusWidth-4))

	loading := m.mutator.InFlight(record.Key())
	if loading {
		line += " …"
	}

	switch {
	case selected:
		return selectedStyle.Render(line)
	case m.alerts.IsRecent(record.Key()):
		return recentStyle.Render(line)
	default:
		return line
	}
}

// renderStats shows the server-provided aggregate counts. They come
// from the remote source and are never recomputed locally.
func (m *Model) renderStats() string {
	parts := make([]string, 0, len(m.vertical.Statuses)+1)
	for _, status := range m.vertical.Statuses {
		parts = append(parts, fmt.Sprintf("%s: %d", status, m.snapshot.Stats[status]))
	}
	parts = append(parts, fmt.Sprintf("total: %d", m.snapshot.Total))
	return statsStyle.Render(strings.Join(parts, " · ")) + "\n"
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}
