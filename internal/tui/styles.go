package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorOrange    = lipgloss.Color("#ffb86c")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Panes
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	paneFocusedStyle = paneStyle.
				BorderForeground(colorPurple)

	paneTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	paneMetaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	// Suggestion list
	recordStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	recordSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	ordinalStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	explanationStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Italic(true)

	bufferStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	// Corrections
	correctionOriginalStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Strikethrough(true)

	correctionFixedStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	correctionReasonStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Background(colorBgLight).
			Bold(true)

	statusBusyStyle = lipgloss.NewStyle().
			Foreground(colorOrange).
			Background(colorBgLight)

	// Help
	helpHeaderStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true).
			Padding(0, 0, 1, 0)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
