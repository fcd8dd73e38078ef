package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(w, h int) string {
	lines := make([]string, h)
	for i := range lines {
		lines[i] = strings.Repeat(".", w)
	}
	return strings.Join(lines, "\n")
}

func TestPlace_Positions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		row  int
		want string
	}{
		{"center", Config{Width: 6, Height: 3, Position: Center}, 1, "..XX.."},
		{"top", Config{Width: 6, Height: 3, Position: Top, PadY: 0}, 0, "..XX.."},
		{"bottom", Config{Width: 6, Height: 3, Position: Bottom, PadY: 1}, 1, "..XX.."},
		{"bottom right", Config{Width: 6, Height: 3, Position: BottomRight, PadX: 1}, 2, "...XX."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(Place(tt.cfg, "XX", grid(6, 3)), "\n")
			require.Len(t, lines, 3)
			assert.Equal(t, tt.want, lines[tt.row])
		})
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	lines := strings.Split(Place(Config{Width: 4, Height: 3}, "X", "ab"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " X  ", lines[1])
}

func TestPlace_OversizedForegroundClampsToOrigin(t *testing.T) {
	lines := strings.Split(Place(Config{Width: 3, Height: 2}, "XXXXX\nYYYYY\nZZZZZ", grid(3, 2)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "XXXXX", lines[0])
	assert.Equal(t, "YYYYY", lines[1])
}
