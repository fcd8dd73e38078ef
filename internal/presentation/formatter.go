// Package presentation formats command output: JSON or YAML records, text
// tables of rendered rows and payload diffs.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/propdesk/internal/render"
	"github.com/zjrosen/propdesk/internal/ui/styles"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{writer: writer}
}

// JSON writes v as indented JSON.
func (f *Formatter) JSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// YAML writes v as YAML, going through its JSON form so field names match
// the API.
func (f *Formatter) YAML(v any) error {
	out, err := ToYAML(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(f.writer, out)
	return err
}

// ToYAML renders v as YAML using its JSON field names.
func ToYAML(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return "", fmt.Errorf("converting record: %w", err)
	}
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Table writes rows under headers as a bordered text table followed by
// footer, when set.
func (f *Formatter) Table(headers []string, rows []render.Row, footer string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.BorderDefaultColor)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, r := range rows {
		cells := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = c.Text
		}
		t.Row(cells...)
	}
	if _, err := fmt.Fprintln(f.writer, t.Render()); err != nil {
		return err
	}
	if footer != "" {
		_, err := fmt.Fprintln(f.writer, footer)
		return err
	}
	return nil
}
