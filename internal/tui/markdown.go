package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWrapWidth is the word-wrap width for rendered markdown.
const DefaultWrapWidth = 80

// RenderMarkdown renders markdown for the terminal. With colors disabled it uses
// glamour's plain "notty" style so output stays readable in pipes and logs.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	style := glamour.WithAutoStyle()
	if !HasColorSupport() {
		style = glamour.WithStandardStyle("notty")
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
