package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/messages"
	"github.com/insectopedia/insectopedia/internal/core/domain"
)

type mockHistoryService struct {
	records  []domain.QueryRecord
	listErr  error
	clearErr error
	limit    int
	cleared  bool
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.QueryRecord, error) {
	m.limit = limit
	return m.records, m.listErr
}

func (m *mockHistoryService) Clear(context.Context) (int, error) {
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	m.cleared = true
	return len(m.records), nil
}

func sampleRecords() []domain.QueryRecord {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return []domain.QueryRecord{
		{ID: "b", Question: "Do bees sleep?", Answer: "Yes, bees rest at night.", SourceIDs: []string{"2_0"},
			Latency: 1500 * time.Millisecond, CreatedAt: at.Add(time.Hour)},
		{ID: "a", Question: "Where do ants live?", Answer: "❌ Error calling Gemini: quota", Failed: true,
			SourceIDs: []string{"1_0", "1_1"}, CreatedAt: at},
	}
}

func press(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, svc *mockHistoryService) *View {
	t.Helper()
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

func TestView_Init_LoadsRecords(t *testing.T) {
	svc := &mockHistoryService{records: sampleRecords()}

	v := loaded(t, svc)

	assert.Equal(t, Limit, svc.limit)
	assert.Len(t, v.Records(), 2)
	assert.NoError(t, v.Err())

	out := v.View()
	assert.Contains(t, out, "Do bees sleep?")
	assert.Contains(t, out, "Yes, bees rest at night.")
	assert.Contains(t, out, "1.5s | sources: 2_0")
	assert.Contains(t, out, "(failed)")
	assert.Contains(t, out, "2 questions")
}

func TestView_Loading(t *testing.T) {
	v := NewView(nil, nil, &mockHistoryService{})
	v.SetDimensions(80, 24)

	v.Init()

	assert.Contains(t, v.View(), "Loading...")
}

func TestView_Empty(t *testing.T) {
	v := loaded(t, &mockHistoryService{})

	assert.Contains(t, v.View(), "No questions recorded.")
}

func TestView_LoadError(t *testing.T) {
	v := loaded(t, &mockHistoryService{listErr: errors.New("database is locked")})

	assert.EqualError(t, v.Err(), "database is locked")
	assert.Contains(t, v.View(), "Error: database is locked")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)

	v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoHistoryService)
	v.Update(v.clear()())
	assert.ErrorIs(t, v.Err(), ErrNoHistoryService)
}

func TestView_Navigation(t *testing.T) {
	v := loaded(t, &mockHistoryService{records: sampleRecords()})

	v.Update(press("j"))
	assert.Equal(t, 1, v.Selected())
	assert.Contains(t, v.View(), "❌ Error calling Gemini: quota")

	v.Update(press("j"))
	assert.Equal(t, 1, v.Selected())

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.Selected())
}

func TestView_Reload(t *testing.T) {
	svc := &mockHistoryService{}
	v := loaded(t, svc)
	svc.records = sampleRecords()

	_, cmd := v.Update(press("r"))
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Len(t, v.Records(), 2)
}

func TestView_Clear(t *testing.T) {
	svc := &mockHistoryService{records: sampleRecords()}
	v := loaded(t, svc)

	_, cmd := v.Update(press("x"))
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.True(t, svc.cleared)
	assert.Empty(t, v.Records())
	assert.Contains(t, v.View(), "Deleted 2 entries")
}

func TestView_ClearError(t *testing.T) {
	v := loaded(t, &mockHistoryService{records: sampleRecords(), clearErr: errors.New("read-only")})

	_, cmd := v.Update(press("x"))
	v.Update(cmd())

	assert.EqualError(t, v.Err(), "read-only")
	assert.Len(t, v.Records(), 2)
}

func TestView_Back(t *testing.T) {
	v := loaded(t, &mockHistoryService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := loaded(t, &mockHistoryService{records: sampleRecords()})

	v.Reset()

	assert.Empty(t, v.Records())
	assert.NoError(t, v.Err())
}

func TestView_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, nil, nil).View())
}
