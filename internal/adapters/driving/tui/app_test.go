package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/messages"
	"github.com/insectopedia/insectopedia/internal/core/domain"
)

type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, Text: "Ants live in colonies."}, nil
}

type mockRetrievalService struct {
	manifest domain.IndexManifest
}

func (m *mockRetrievalService) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (m *mockRetrievalService) Manifest() domain.IndexManifest {
	return m.manifest
}

type mockHistoryService struct {
	records []domain.QueryRecord
}

func (m *mockHistoryService) List(context.Context, int) ([]domain.QueryRecord, error) {
	return m.records, nil
}

func (m *mockHistoryService) Clear(context.Context) (int, error) {
	n := len(m.records)
	m.records = nil
	return n, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{
		Answer:    &mockAnswerService{},
		Retrieval: &mockRetrievalService{manifest: domain.IndexManifest{Model: "hashing-384", Count: 12}},
		History:   &mockHistoryService{records: []domain.QueryRecord{{ID: "1", Question: "Do moths sleep?"}}},
	})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// update feeds msg to the app and then every message its command chain
// produces, ignoring batch and blink commands.
func update(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	for cmd != nil {
		next := cmd()
		switch next.(type) {
		case messages.AnswerReceived, messages.HistoryLoaded, messages.HistoryCleared, messages.ViewChanged:
			_, cmd = app.Update(next)
		default:
			return
		}
	}
}

func typeText(app *App, s string) {
	for _, r := range s {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(&Ports{Answer: &mockAnswerService{}})

	require.NoError(t, err)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	_, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingAnswerService)

	_, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrInvalidPorts)
}

func TestApp_Menu_ShowsIndexInfo(t *testing.T) {
	app := newTestApp(t)

	out := app.View()

	assert.Contains(t, out, "12 chunks indexed with hashing-384")
	assert.Contains(t, out, "History")
}

func TestApp_Menu_HidesHistoryWithoutService(t *testing.T) {
	app, err := NewApp(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)
	app.SetDimensions(80, 24)

	assert.NotContains(t, app.View(), "History")
}

func TestApp_AskFlow(t *testing.T) {
	app := newTestApp(t)

	update(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, messages.ViewAsk, app.CurrentView())

	typeText(app, "Where do ants live?")
	update(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "Ants live in colonies.")
}

func TestApp_AskFlow_RetrievalError(t *testing.T) {
	app, err := NewApp(&Ports{Answer: &mockAnswerService{err: errors.New("index missing")}})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	update(app, messages.ViewChanged{View: messages.ViewAsk})

	typeText(app, "bees?")
	update(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.EqualError(t, app.Err(), "index missing")
	assert.Contains(t, app.View(), "Error: index missing")
}

func TestApp_HistoryFlow(t *testing.T) {
	app := newTestApp(t)

	update(app, messages.ViewChanged{View: messages.ViewHistory})

	assert.Equal(t, messages.ViewHistory, app.CurrentView())
	assert.Contains(t, app.View(), "Do moths sleep?")

	update(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Contains(t, app.View(), "Deleted 1 entries")

	update(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Help(t *testing.T) {
	app := newTestApp(t)

	update(app, messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Show or hide the retrieved context")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Same(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}
