package chat

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#10B981") // Green
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorError     = lipgloss.Color("#EF4444") // Red
	colorText      = lipgloss.Color("#E5E7EB") // Light gray
	colorMuted     = lipgloss.Color("#9CA3AF") // Muted gray
	colorBorder    = lipgloss.Color("#374151") // Dark gray
	colorUser      = lipgloss.Color("#f43f5e") // Rose
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	contextStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true)

	botLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	userTextStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	actionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSuccess).
			Foreground(colorSuccess).
			Padding(0, 1).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	inputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	spinnerStyle = lipgloss.NewStyle().Foreground(colorPrimary)
)
