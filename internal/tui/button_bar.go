package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/setupwizard/internal/flow"
	"github.com/mark3labs/setupwizard/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
	ButtonHidden                      // Not rendered
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the button bar centered in its width.
func (b *ButtonBar) Render() string {
	s := theme.Current().S()

	var rendered []string
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonHidden:
			// Keep the slot so the next button does not jump around.
			rendered = append(rendered, strings.Repeat(" ", lipgloss.Width(s.ButtonNormal.Render(btn.Label))))
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}
	if len(rendered) == 0 {
		return ""
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

// NavButtons builds the Back/Next pair for the controller's button state.
// nextUsable is false when pressing Next would not move anywhere.
func NavButtons(state flow.Buttons, nextUsable bool) []Button {
	back := Button{Label: "← Back", State: ButtonNormal}
	if !state.PrevVisible {
		back.State = ButtonHidden
	}

	next := Button{Label: state.NextLabel + " →", State: ButtonFocused}
	if !state.NextEnabled || !nextUsable {
		next.State = ButtonDisabled
	}
	return []Button{back, next}
}
