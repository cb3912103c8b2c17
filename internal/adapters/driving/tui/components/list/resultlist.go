// Package list provides the navigable source list for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/styles"
	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// linesPerResult is the rendered height of one entry: title and preview.
const linesPerResult = 2

// SourceList shows the chunks an answer was grounded on.
type SourceList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList returns an empty list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init implements the component contract. The list needs no startup command.
func (r *SourceList) Init() tea.Cmd {
	return nil
}

// Update moves the selection on arrow and j/k keys.
func (r *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the visible window of results around the selection.
func (r *SourceList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(r.results)*linesPerResult+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(r.results))), "")

	visible := max((r.height-2)/linesPerResult, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *SourceList) renderResult(index int, result *domain.SearchResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := fmt.Sprintf("%s (%s)", result.Chunk.Name, result.Chunk.ID)
	if result.Chunk.Name == "" {
		title = result.Chunk.ID
	}
	titleWidth := max(r.width-16, 10)
	title = truncate(title, titleWidth)
	score := fmt.Sprintf("%.3f", result.Score)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, titleWidth, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, titleWidth, title)) +
			r.styles.Score.Render(score)
	}

	preview := strings.Join(strings.Fields(result.Chunk.Text), " ")
	preview = truncate(preview, max(r.width-6, 20))
	return titleLine + "\n" + r.styles.Muted.Render("    "+preview)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the list and selects the first entry.
func (r *SourceList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current entries.
func (r *SourceList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the selected index.
func (r *SourceList) Selected() int {
	return r.selected
}

// SetSelected selects index if it is in range.
func (r *SourceList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the selected entry, or nil when the list is empty.
func (r *SourceList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

func (r *SourceList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

func (r *SourceList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the space the list may render into.
func (r *SourceList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

func (r *SourceList) Width() int  { return r.width }
func (r *SourceList) Height() int { return r.height }
func (r *SourceList) Count() int  { return len(r.results) }

// IsEmpty reports whether there are no entries.
func (r *SourceList) IsEmpty() bool {
	return len(r.results) == 0
}
