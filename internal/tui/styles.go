package tui

import "github.com/charmbracelet/lipgloss"

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")).Padding(0, 1)

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	citationStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	citationURLStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Underline(true)
	snippetStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true)

	currentLineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	taglineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Italic(true)
)
