package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorMuted   = lipgloss.Color("#565f89")
)

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	titleStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	badgeStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	placeholderPanelStyle = panelStyle.
				BorderForeground(colorWarning)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	cursorStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Strikethrough(true)
)

var categoryColors = map[string]lipgloss.Color{
	"Web":   colorPrimary,
	"Api":   colorSuccess,
	"Error": colorError,
}

func categoryBadge(category string) string {
	style := badgeStyle
	if c, ok := categoryColors[category]; ok {
		style = style.Foreground(c)
	}
	return style.Render("[" + category + "]")
}
