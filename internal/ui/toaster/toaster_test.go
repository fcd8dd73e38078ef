package toaster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/propdesk/internal/notify"
)

func TestNew(t *testing.T) {
	m := New()
	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
}

func TestPush_ShowsTitleAndDescription(t *testing.T) {
	m, cmd := New().Push(notify.Error("Failed to load developer information", "Some developer names may not display correctly"))
	require.NotNil(t, cmd)
	assert.True(t, m.Visible())

	view := m.View()
	assert.Contains(t, view, "Failed to load developer information")
	assert.Contains(t, view, "Some developer names")
}

func TestDismissMsg_RemovesOnlyThatToast(t *testing.T) {
	m, _ := New().Push(notify.Success("Project deleted successfully"))
	m, _ = m.Push(notify.Error("Failed to fetch data", ""))
	require.Equal(t, 2, m.Count())

	m = m.Update(DismissMsg{ID: 1})
	require.Equal(t, 1, m.Count())
	assert.NotContains(t, m.View(), "deleted")
	assert.Contains(t, m.View(), "Failed to fetch data")

	m = m.Update(DismissMsg{ID: 99})
	assert.Equal(t, 1, m.Count())
}

func TestPush_CapsStack(t *testing.T) {
	m := New()
	for i := range MaxVisible + 2 {
		m, _ = m.Push(notify.Notification{Title: strings.Repeat("x", i+1)})
	}
	assert.Equal(t, MaxVisible, m.Count())
	assert.Equal(t, 0, m.DismissAll().Count())
}

func TestOverlay_BottomRight(t *testing.T) {
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 60)+"\n", 10), "\n")
	m, _ := New().Push(notify.Success("Saved"))

	out := m.Overlay(bg, 60, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, strings.Join(lines[5:], "\n"), "Saved")
	assert.Equal(t, bg, New().Overlay(bg, 60, 10))
}
