package styles

import "github.com/charmbracelet/lipgloss"

// GitHub terminal light theme palette.
var (
	ColorFg      = lipgloss.Color("#24292f") // primary foreground
	ColorMuted   = lipgloss.Color("#656d76") // muted/dim text
	ColorAccent  = lipgloss.Color("#0969da") // accent blue
	ColorError   = lipgloss.Color("#cf222e") // error red
	ColorSuccess = lipgloss.Color("#1a7f37") // success green
	ColorWarning = lipgloss.Color("#9a6700") // warning amber
	ColorMagenta = lipgloss.Color("#8250df") // purple/magenta
)

// Centralized style definitions for the TUI and command output.
var (
	// General utility styles.
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	DimStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	HintStyle    = lipgloss.NewStyle().Foreground(ColorMuted)

	// Form labels. Highlighted fields are the ones the hovered guide step
	// points at; disabled fields are locked by the preset or the form.
	LabelStyle       = lipgloss.NewStyle().Bold(true).Width(22)
	FocusedLabel     = lipgloss.NewStyle().Bold(true).Width(22).Foreground(ColorAccent)
	HighlightedLabel = lipgloss.NewStyle().Bold(true).Width(22).Foreground(ColorWarning).Underline(true)
	DisabledLabel    = lipgloss.NewStyle().Width(22).Foreground(ColorMuted).Faint(true)
	DisabledValue    = lipgloss.NewStyle().Foreground(ColorMuted).Faint(true)
	HighlightMarker  = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)

	// Option lists.
	OptStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	SelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	// Tab bar.
	TabActive   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Underline(true)
	TabInactive = lipgloss.NewStyle().Foreground(ColorMuted)
	TabDone     = lipgloss.NewStyle().Foreground(ColorSuccess)

	// Guidance panel.
	PanelBorder        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorAccent).Padding(0, 1)
	PanelBorderBlurred = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted).Padding(0, 1)
	StepStyle          = lipgloss.NewStyle().Foreground(ColorMagenta)
	StepHoverStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorMagenta).Underline(true)

	// Diff lines on the review screen.
	DiffAdd  = lipgloss.NewStyle().Foreground(ColorSuccess)
	DiffDel  = lipgloss.NewStyle().Foreground(ColorError)
	DiffHunk = lipgloss.NewStyle().Foreground(ColorMagenta)

	// Error block style.
	ErrorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(ColorError)
)

// Tree-drawing characters for hierarchical display.
const (
	TreeCorner = "└ "
	TreeTee    = "├─ "
)
