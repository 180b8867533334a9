package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders md for the terminal. Plain mode uses glamour's
// notty style; on any renderer error the source is returned unchanged.
func (f *Formatter) RenderMarkdown(md string) string {
	style := glamour.WithAutoStyle()
	if !f.colored {
		style = glamour.WithStandardStyle("notty")
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(rendered)
}
