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
)

// HistoryAction is what the caller must do after an update
type HistoryAction int

const (
	HistoryNone   HistoryAction = iota
	HistorySearch               // query changed, re-run the search
	HistoryClear                // user asked to wipe local history
	HistoryClose
)

// HistoryModal searches the locally recorded scan history
type HistoryModal struct {
	input     textinput.Model
	results   []domain.ScanResult
	errMsg    string
	cursor    int
	visible   bool
	width     int
	height    int
	prevQuery string
}

// NewHistoryModal creates a new history modal
func NewHistoryModal() HistoryModal {
	ti := textinput.New()
	ti.Placeholder = "Search history..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return HistoryModal{input: ti}
}

// Show makes the modal visible and focuses the input
func (h *HistoryModal) Show() tea.Cmd {
	h.visible = true
	h.input.SetValue("")
	h.results = nil
	h.errMsg = ""
	h.cursor = 0
	h.prevQuery = ""
	return h.input.Focus()
}

// Hide hides the modal
func (h *HistoryModal) Hide() {
	h.visible = false
	h.input.Blur()
}

// SetResults replaces the listed entries
func (h *HistoryModal) SetResults(results []domain.ScanResult) {
	h.results = results
	h.errMsg = ""
	if h.cursor >= len(results) {
		h.cursor = max(len(results)-1, 0)
	}
}

// SetError shows msg instead of the entries
func (h *HistoryModal) SetError(msg string) {
	h.errMsg = msg
}

// SetSize updates the component dimensions
func (h *HistoryModal) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.input.Width = max(width/2, 20)
}

// Query returns the current search query
func (h HistoryModal) Query() string {
	return h.input.Value()
}

// Update handles messages
func (h HistoryModal) Update(msg tea.Msg) (HistoryModal, tea.Cmd, HistoryAction) {
	if !h.visible {
		return h, nil, HistoryNone
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, ModalKeys.Close):
			h.Hide()
			return h, nil, HistoryClose
		case key.Matches(keyMsg, ModalKeys.Clear):
			return h, nil, HistoryClear
		case key.Matches(keyMsg, ModalKeys.Down):
			if h.cursor < len(h.results)-1 {
				h.cursor++
			}
			return h, nil, HistoryNone
		case key.Matches(keyMsg, ModalKeys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
			return h, nil, HistoryNone
		case key.Matches(keyMsg, ModalKeys.Search):
			return h, nil, HistorySearch
		}
	}

	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	if current := h.input.Value(); current != h.prevQuery {
		h.prevQuery = current
		h.cursor = 0
		return h, cmd, HistorySearch
	}
	return h, cmd, HistoryNone
}

// View renders the modal centred in its area
func (h HistoryModal) View() string {
	if !h.visible {
		return ""
	}

	modalWidth := min(max(h.width*2/3, 40), 90)
	maxRows := max(h.height/2, 5)

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Scan History"))
	b.WriteString("\n")
	b.WriteString(h.input.View())
	b.WriteString("\n\n")

	switch {
	case h.errMsg != "":
		b.WriteString(styles.ErrorStyle.Render(h.errMsg))
	case len(h.results) == 0:
		b.WriteString(styles.DimStyle.Render("No history recorded."))
	default:
		h.renderRows(&b, modalWidth-6, maxRows)
	}

	b.WriteString("\n\n")
	b.WriteString(styles.HelpKeyStyle.Render("esc") + styles.HelpDescStyle.Render(" close  "))
	b.WriteString(styles.HelpKeyStyle.Render("C-x") + styles.HelpDescStyle.Render(" clear history"))

	modal := styles.ModalStyle.
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, modal)
}

func (h HistoryModal) renderRows(b *strings.Builder, width, maxRows int) {
	start := 0
	if h.cursor >= maxRows {
		start = h.cursor - maxRows + 1
	}
	end := min(start+maxRows, len(h.results))

	for i := start; i < end; i++ {
		r := h.results[i]
		left := fmt.Sprintf("%s  %s", FormatTime(r.Timestamp), styles.Truncate(r.DisplayName(), width/2))
		right := StatusBadge(r)

		line := styles.Justify(left, right, width)
		if i == h.cursor {
			line = styles.AccentStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if len(h.results) > maxRows {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d/%d", h.cursor+1, len(h.results))))
	}
}
