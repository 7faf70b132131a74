package explore

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the hit views readable on light and dark
// terminals.
var (
	colorFrame   = lipgloss.AdaptiveColor{Light: "#1d4fa8", Dark: "#2f6fdd"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#8a8a8a", Dark: "#6c6c6c"}
	colorText    = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#e4e4e4"}
	colorHeading = lipgloss.AdaptiveColor{Light: "#00707f", Dark: "#3fc1d0"}
	colorOnFrame = lipgloss.Color("#ffffff")

	// Pattern and hit data.
	colorPatternID = lipgloss.AdaptiveColor{Light: "#6b3fa0", Dark: "#b48ef0"}
	colorHitSpan   = lipgloss.AdaptiveColor{Light: "#9a5b00", Dark: "#f2b134"}
	colorCount     = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#7ccf7f"}
	colorPosition  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#a8a8a8"}
	colorCursorBg  = lipgloss.AdaptiveColor{Light: "#c9dcff", Dark: "#1c3366"}
)

// Panes.
var (
	activeBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFrame)
	inactiveBorderStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorDim)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorOnFrame).Background(colorFrame).Padding(0, 1)

	modalStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(colorFrame).Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Tables.
var (
	headerRowStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorHeading)
	selectedRowStyle = lipgloss.NewStyle().Background(colorCursorBg).Foreground(colorText)
)

// Pattern rows.
var (
	patternIDStyle  = lipgloss.NewStyle().Foreground(colorPatternID)
	hitCountStyle   = lipgloss.NewStyle().Foreground(colorCount)
	extensionsStyle = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

// Hit details.
var (
	fieldLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHeading)
	fieldValueStyle = lipgloss.NewStyle().Foreground(colorText)
	sourceIDStyle   = lipgloss.NewStyle().Foreground(colorPatternID)
	positionStyle   = lipgloss.NewStyle().Foreground(colorPosition)

	snippetMatchStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorHitSpan)
	snippetContextStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Facets.
var (
	facetLabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorFrame)
	facetSelectedStyle = lipgloss.NewStyle().Foreground(colorCount)
	facetCountStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// Help.
var (
	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorHeading)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorDim)
)
