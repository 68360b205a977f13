package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	// Frame
	Frame       lipgloss.Style
	HeaderTitle lipgloss.Style
	StepCounter lipgloss.Style

	// Page
	PageTitle lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style

	// Step dots
	StepDone    lipgloss.Style
	StepCurrent lipgloss.Style
	StepAhead   lipgloss.Style
	StepLocked  lipgloss.Style

	// Buttons
	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	// Hints
	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}

func (t *Theme) buildStyles() *Styles {
	button := lipgloss.NewStyle().
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	return &Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BgSurface1)).
			Padding(1, 2),
		HeaderTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Primary)).
			Bold(true),
		StepCounter: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)),

		PageTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBright)).
			Bold(true),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Bold(true),

		StepDone:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		StepCurrent: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)).Bold(true),
		StepAhead:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
		StepLocked:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),

		ButtonNormal: button.
			Foreground(lipgloss.Color(t.FgBase)).
			Background(lipgloss.Color(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(lipgloss.Color(t.FgMuted)).
			Background(lipgloss.Color(t.BgMantle)),
		ButtonFocused: button.
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Tertiary)).
			Bold(true),

		HintKey:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Bold(true),
		HintDesc:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgSubtle)),
		HintSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
	}
}
