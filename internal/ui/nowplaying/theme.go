package nowplaying

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent   = lipgloss.Color("#22d3ee") // cyan, active items
	colorPink     = lipgloss.Color("#f472b6") // effects that are on
	colorFg       = lipgloss.Color("#c0c0c0")
	colorMuted    = lipgloss.Color("#808080")
	colorSubtle   = lipgloss.Color("#585858")
	colorCursor   = lipgloss.Color("#303030")
	colorBorder   = lipgloss.Color("#585858")
	colorError    = lipgloss.Color("#ff5555")
	colorFavorite = lipgloss.Color("#f1a208")
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	baseStyle     = lipgloss.NewStyle().Foreground(colorFg)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	subtleStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
	playingStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Background(colorCursor).Foreground(colorFg)
	activeStyle   = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	favoriteStyle = lipgloss.NewStyle().Foreground(colorFavorite)

	progressFilled = lipgloss.NewStyle().Foreground(colorAccent)
	progressEmpty  = lipgloss.NewStyle().Foreground(colorSubtle)
)

var barStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	stopSymbol  = "■"
)
