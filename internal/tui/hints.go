package tui

import (
	"charm.land/bubbles/v2/key"
	"github.com/mark3labs/setupwizard/internal/tui/theme"
)

// RenderHint renders a single key-description pair.
// Example: RenderHint("enter", "select") -> "enter select"
func RenderHint(key, desc string) string {
	s := theme.Current().S()
	return s.HintKey.Render(key) + " " + s.HintDesc.Render(desc)
}

// RenderHintBar renders the help of enabled bindings separated by " . ".
func RenderHintBar(bindings ...key.Binding) string {
	s := theme.Current().S()
	var result string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		if result != "" {
			result += " " + s.HintSeparator.Render(".") + " "
		}
		h := b.Help()
		result += RenderHint(h.Key, h.Desc)
	}
	return result
}
