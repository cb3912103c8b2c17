package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/messages"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView_Items(t *testing.T) {
	withHistory := NewView(nil, true)
	withoutHistory := NewView(nil, false)

	require.Len(t, withHistory.Items(), 4)
	assert.Equal(t, messages.ViewHistory, withHistory.Items()[1].View)
	require.Len(t, withoutHistory.Items(), 3)
	assert.Equal(t, "Help", withoutHistory.Items()[1].Label)
	assert.True(t, withoutHistory.Items()[2].Quit)
	assert.NotNil(t, withoutHistory.styles)
	assert.Nil(t, withoutHistory.Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, true)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Same(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
}

func TestView_Update_Navigation(t *testing.T) {
	view := NewView(nil, true)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.Selected())

	for range 5 {
		view.Update(runes("j"))
	}
	assert.Equal(t, 3, view.Selected())

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	view.Update(runes("k"))
	assert.Equal(t, 1, view.Selected())

	for range 5 {
		view.Update(runes("k"))
	}
	assert.Equal(t, 0, view.Selected())
}

func TestView_Update_EnterChangesView(t *testing.T) {
	view := NewView(nil, true)
	view.Update(runes("j"))

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHistory}, cmd())
}

func TestView_Update_Quit(t *testing.T) {
	view := NewView(nil, false)

	_, cmd := view.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	view.Update(runes("j"))
	view.Update(runes("j"))
	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_View(t *testing.T) {
	view := NewView(nil, true)
	assert.Equal(t, "Initialising...", view.View())

	view.SetDimensions(80, 24)
	view.SetIndexInfo("1204 chunks, text-embedding-3-small")
	out := view.View()

	assert.Contains(t, out, "InsectoPedia")
	assert.Contains(t, out, "> Ask a question")
	assert.Contains(t, out, "History")
	assert.Contains(t, out, "1204 chunks, text-embedding-3-small")
}
