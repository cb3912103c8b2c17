// Package history provides the query history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/components/status"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/keymap"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/messages"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/styles"
	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

// ErrNoHistoryService is reported when history is disabled.
var ErrNoHistoryService = errors.New("history is disabled")

// Limit is the number of records loaded.
const Limit = 50

// View lists past questions with the selected answer underneath.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	service driving.HistoryService
	ctx     context.Context

	records  []domain.QueryRecord
	selected int
	loading  bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates the history view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := status.NewBar(s, km)
	bar.SetState(status.StateHistory)

	return &View{
		styles:    s,
		keymap:    km,
		statusbar: bar,
		service:   service,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context passed to the history service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the most recent records.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.HistoryLoaded{Err: ErrNoHistoryService}
		}
		records, err := service.List(ctx, Limit)
		return messages.HistoryLoaded{Records: records, Err: err}
	}
}

func (v *View) clear() tea.Cmd {
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.HistoryCleared{Err: ErrNoHistoryService}
		}
		n, err := service.Clear(ctx)
		return messages.HistoryCleared{Deleted: n, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.records = msg.Records
			v.selected = 0
			v.statusbar.SetMessage(fmt.Sprintf("%d questions", len(msg.Records)))
		}

	case messages.HistoryCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.records = nil
		v.selected = 0
		v.statusbar.SetMessage(fmt.Sprintf("Deleted %d entries", msg.Deleted))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case key.Matches(msg, v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case key.Matches(msg, v.keymap.Down):
			if v.selected < len(v.records)-1 {
				v.selected++
			}
		case key.Matches(msg, v.keymap.Reload):
			v.loading = true
			return v, v.load()
		case key.Matches(msg, v.keymap.Clear):
			return v, v.clear()
		}
	}
	return v, nil
}

// View renders the history list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("History"), ""}
	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case len(v.records) == 0:
		sections = append(sections, v.styles.Muted.Render("No questions recorded."))
	default:
		sections = append(sections, v.renderList(), "", v.renderSelected())
	}

	v.statusbar.SetWidth(v.width)
	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderList() string {
	visible := max(v.height/2-4, 1)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.records))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := v.records[i]
		line := fmt.Sprintf("%s  %s", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Question)
		if r.Failed {
			line += "  (failed)"
		}
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderSelected() string {
	r := v.records[v.selected]
	frame := v.styles.Answer
	if r.Failed {
		frame = v.styles.Failure
	}
	body := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(r.Answer)
	meta := fmt.Sprintf("%s | sources: %s", r.Latency.Round(time.Millisecond), strings.Join(r.SourceIDs, ", "))
	return frame.Render(body) + "\n" + v.styles.Muted.Render(meta)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Records returns the loaded records.
func (v *View) Records() []domain.QueryRecord { return v.records }

// Selected returns the selected index.
func (v *View) Selected() int { return v.selected }

// Err returns the last load or clear error.
func (v *View) Err() error { return v.err }

// Reset forgets the loaded records.
func (v *View) Reset() {
	v.records = nil
	v.selected = 0
	v.err = nil
	v.statusbar.SetMessage("")
}
