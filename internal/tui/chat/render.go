package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// newMarkdownRenderer builds the assistant reply renderer for width columns.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	if width < 40 {
		width = 40
	}
	if width > 120 {
		width = 120
	}

	customStyle := styles.DraculaStyleConfig
	// Inline code is drawn without a background block.
	customStyle.Code = ansi.StyleBlock{
		StylePrimitive: ansi.StylePrimitive{
			Color:           stringPtr("229"),
			BackgroundColor: stringPtr(""),
		},
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(customStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// RenderMarkdown renders md for a terminal, falling back to the raw text.
func RenderMarkdown(md string, width int) string {
	r := newMarkdownRenderer(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func stringPtr(s string) *string {
	return &s
}
