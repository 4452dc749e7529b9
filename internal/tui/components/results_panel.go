package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// cardHeight is the rendered height of one result card including borders
const cardHeight = 6

// ResultsPanel renders completed scans with an optional fuzzy filter
type ResultsPanel struct {
	title     string
	emptyText string

	results []domain.ScanResult
	errMsg  string
	loaded  bool

	cursor  int
	offset  int
	focused bool

	filterActive bool
	filterInput  textinput.Model
	matches      []fuzzy.Match // nil when no filter query is applied
}

// NewResultsPanel creates a panel with the given heading and empty text
func NewResultsPanel(title, emptyText string) ResultsPanel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 100
	ti.Prompt = "/"
	ti.PromptStyle = styles.FilterPromptStyle

	return ResultsPanel{
		title:       title,
		emptyText:   emptyText,
		filterInput: ti,
	}
}

// SetResults replaces the rendered results and clears any error
func (p *ResultsPanel) SetResults(results []domain.ScanResult) {
	p.results = results
	p.errMsg = ""
	p.loaded = true
	p.applyFilter()
}

// SetError shows msg in place of the results
func (p *ResultsPanel) SetError(msg string) {
	p.errMsg = msg
	p.loaded = true
}

func (p ResultsPanel) Error() string { return p.errMsg }

func (p *ResultsPanel) Focus() { p.focused = true }

func (p *ResultsPanel) Blur() { p.focused = false }

func (p ResultsPanel) Focused() bool { return p.focused }

// IsFilterTyping returns true if the filter input has keyboard focus
func (p ResultsPanel) IsFilterTyping() bool {
	return p.filterActive && p.filterInput.Focused()
}

// IsFiltering returns true if a filter is active
func (p ResultsPanel) IsFiltering() bool {
	return p.filterActive
}

// ToggleFilter activates the filter input
func (p *ResultsPanel) ToggleFilter() tea.Cmd {
	p.filterActive = true
	return p.filterInput.Focus()
}

// ClearFilter deactivates the filter and shows all results
func (p *ResultsPanel) ClearFilter() {
	p.filterActive = false
	p.filterInput.SetValue("")
	p.filterInput.Blur()
	p.matches = nil
	p.cursor = 0
	p.offset = 0
}

// Visible returns the results after filtering
func (p ResultsPanel) Visible() []domain.ScanResult {
	if p.matches == nil {
		return p.results
	}
	out := make([]domain.ScanResult, len(p.matches))
	for i, m := range p.matches {
		out[i] = p.results[m.Index]
	}
	return out
}

// filterText is what the filter matches against
func filterText(r domain.ScanResult) string {
	if r.Author == "" {
		return r.DisplayName()
	}
	return r.DisplayName() + " " + r.Author
}

// resultSource feeds the original filter text to the matcher, so matched
// byte offsets line up with the rendered name
type resultSource []domain.ScanResult

func (s resultSource) String(i int) string { return filterText(s[i]) }

func (s resultSource) Len() int { return len(s) }

func (p *ResultsPanel) applyFilter() {
	query := strings.TrimSpace(p.filterInput.Value())
	if !p.filterActive || query == "" {
		p.matches = nil
		p.clampCursor()
		return
	}

	p.matches = fuzzy.FindFrom(query, resultSource(p.results))
	if p.matches == nil {
		p.matches = []fuzzy.Match{}
	}
	p.clampCursor()
}

func (p *ResultsPanel) clampCursor() {
	n := len(p.Visible())
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.offset > p.cursor {
		p.offset = p.cursor
	}
}

// Update handles navigation and filter input
func (p ResultsPanel) Update(msg tea.Msg) (ResultsPanel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)

	if p.IsFilterTyping() {
		if ok {
			switch {
			case key.Matches(keyMsg, ResultsKeys.Escape):
				p.ClearFilter()
				return p, nil
			case key.Matches(keyMsg, ResultsKeys.Enter):
				// Accept filter, blur input to allow navigation
				p.filterInput.Blur()
				if strings.TrimSpace(p.filterInput.Value()) == "" {
					p.ClearFilter()
				}
				return p, nil
			}
		}
		var cmd tea.Cmd
		p.filterInput, cmd = p.filterInput.Update(msg)
		p.applyFilter()
		return p, cmd
	}

	if !ok || !p.focused {
		return p, nil
	}

	switch {
	case key.Matches(keyMsg, ResultsKeys.Escape):
		if p.filterActive {
			p.ClearFilter()
		}
	case key.Matches(keyMsg, ResultsKeys.Filter):
		return p, p.ToggleFilter()
	case key.Matches(keyMsg, ResultsKeys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, ResultsKeys.Down):
		if p.cursor < len(p.Visible())-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, ResultsKeys.Home):
		p.cursor = 0
	case key.Matches(keyMsg, ResultsKeys.End):
		p.cursor = max(len(p.Visible())-1, 0)
	}
	p.clampCursor()
	return p, nil
}

// View renders the panel within width x height
func (p ResultsPanel) View(width, height int) string {
	width = max(width, 20)
	inner := width - 2

	lines := []string{styles.PanelTitleStyle.Render(p.title)}
	if p.filterActive {
		lines = append(lines, p.filterInput.View())
	}

	switch {
	case !p.loaded:
		lines = append(lines, styles.DimStyle.Render("Loading..."))
	case p.errMsg != "":
		lines = append(lines, styles.ErrorBoxStyle.Width(inner).Render(p.errMsg))
	case len(p.results) == 0:
		lines = append(lines, styles.DimStyle.Render(p.emptyText))
	default:
		lines = append(lines, p.renderCards(inner, height-len(lines)-1)...)
	}

	return styles.PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (p *ResultsPanel) renderCards(width, height int) []string {
	vis := p.Visible()
	if len(vis) == 0 {
		return []string{styles.DimStyle.Render("No matches")}
	}

	perPage := max(height/cardHeight, 1)
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+perPage {
		p.offset = p.cursor - perPage + 1
	}

	end := min(p.offset+perPage, len(vis))
	out := make([]string, 0, end-p.offset+1)
	for i := p.offset; i < end; i++ {
		var matched []int
		if p.matches != nil {
			matched = p.matches[i].MatchedIndexes
		}
		out = append(out, RenderResultCard(vis[i], matched, width, p.focused && i == p.cursor))
	}
	if len(vis) > perPage {
		out = append(out, styles.DimStyle.Render(fmt.Sprintf("%d/%d", p.cursor+1, len(vis))))
	}
	return out
}

// StatusBadge renders the backend status of a result as a badge
func StatusBadge(r domain.ScanResult) string {
	if r.Succeeded() {
		return styles.SuccessBadgeStyle.Render(string(r.Status))
	}
	return styles.ErrorBadgeStyle.Render(string(r.Status))
}

// RenderResultCard renders one result. matched holds byte offsets into
// the filter text, whose prefix is the display name.
func RenderResultCard(r domain.ScanResult, matched []int, width int, selected bool) string {
	cardWidth := max(width-2, 10)
	textWidth := cardWidth - 2

	name := r.DisplayName()
	var nameHits []int
	for _, i := range matched {
		if i < len(name) {
			nameHits = append(nameHits, i)
		}
	}

	head := styles.HighlightMatches(styles.Truncate(name, textWidth-10), nameHits, styles.TitleStyle)
	lines := []string{styles.Justify(head, StatusBadge(r), textWidth)}

	if r.Author != "" {
		lines = append(lines, styles.SubtitleStyle.Render("by "+styles.Truncate(r.Author, textWidth-3)))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines,
		styles.DimStyle.Render(fmt.Sprintf("Model ID: %d", r.ModelID))+"  "+
			styles.DimStyle.Render(fmt.Sprintf("Examples found: %d", r.FoundItems)),
		styles.DimStyle.Render("Scanned: "+FormatTime(r.Timestamp)),
	)

	style := styles.CardStyle
	if selected {
		style = styles.CardSelectedStyle
	}
	return style.Width(cardWidth).Render(strings.Join(lines, "\n"))
}
