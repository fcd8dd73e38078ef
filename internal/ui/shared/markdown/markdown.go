// Package markdown renders record details as styled terminal markdown.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer at a fixed wrap width.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer. style is a glamour standard style name such as
// "dark" or "light"; empty means "dark". A named style avoids the terminal
// background query that WithAutoStyle performs.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

// Render turns markdown into styled output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// Field is one labelled value in a detail document.
type Field struct {
	Label string
	Value string
}

// Document builds the markdown for a record: a heading, a field table and
// the free-text description.
func Document(title string, fields []Field, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	if len(fields) > 0 {
		b.WriteString("| Field | Value |\n|---|---|\n")
		for _, f := range fields {
			fmt.Fprintf(&b, "| %s | %s |\n", escape(f.Label), escape(f.Value))
		}
		b.WriteString("\n")
	}
	if desc := strings.TrimSpace(description); desc != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
