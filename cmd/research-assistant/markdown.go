// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/charmbracelet/glamour"
)

// renderMarkdown styles md for the terminal, returning md unchanged if the
// renderer cannot be built.
func renderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
