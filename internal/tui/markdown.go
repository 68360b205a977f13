package tui

import (
	"strings"

	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
)

// renderMarkdown renders a page body with glamour.
// Falls back to plain text wrapping if rendering fails.
func renderMarkdown(content string, width int) string {
	// Cap width to 100 for readability
	width = min(width, 100)
	if width < 20 {
		width = 20
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(content, width)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return wrapText(content, width)
	}

	return strings.Trim(rendered, "\n")
}

func wrapText(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(content)
}
