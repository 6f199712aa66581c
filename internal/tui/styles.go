package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	thumbStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	railStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	phaseStyles = map[string]lipgloss.Style{
		"before":    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		"animating": lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		"after":     lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	}

	cardStyles = map[string]lipgloss.Style{
		"idle":    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		"moving":  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"settled": lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
	}
)

func phaseStyle(name string) lipgloss.Style {
	if s, ok := phaseStyles[name]; ok {
		return s
	}
	return mutedStyle
}
