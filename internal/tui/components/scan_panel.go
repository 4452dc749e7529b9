package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/tui/styles"
)

const (
	ScanPanelTitle = "Scanner Status"

	ButtonStart    = "Start Scan"
	ButtonStarting = "Starting..."
	ButtonScanning = "Scanning..."
)

// TimeLayout is how timestamps are shown in panels
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in local time
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// ScanPanel collects a model reference and shows the scanner status
type ScanPanel struct {
	method   domain.InputMethod
	idInput  textinput.Model
	urlInput textinput.Model
	message  string
	isError  bool
	disabled bool
	focused  bool
}

// ScanPanelView carries the state the panel renders but does not own
type ScanPanelView struct {
	Width        int
	State        domain.ScanState
	LastScan     *time.Time
	CurrentModel int64
	Submitting   bool
	Frame        int
}

func newModelInput(method domain.InputMethod) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = method.Placeholder()
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	return ti
}

// NewScanPanel creates a panel in ID mode with the input focused
func NewScanPanel() ScanPanel {
	p := ScanPanel{
		method:   domain.InputByID,
		idInput:  newModelInput(domain.InputByID),
		urlInput: newModelInput(domain.InputByURL),
	}
	p.Focus()
	return p
}

func (p ScanPanel) Method() domain.InputMethod { return p.method }

func (p ScanPanel) Disabled() bool { return p.disabled }

func (p ScanPanel) Focused() bool { return p.focused }

// Value returns the text of the active input
func (p ScanPanel) Value() string {
	return p.active().Value()
}

func (p *ScanPanel) active() *textinput.Model {
	if p.method == domain.InputByURL {
		return &p.urlInput
	}
	return &p.idInput
}

// ToggleMethod switches between ID and URL entry. Each keeps its own text.
func (p *ScanPanel) ToggleMethod() {
	p.active().Blur()
	p.method = p.method.Toggle()
	if p.focused && !p.disabled {
		p.active().Focus()
	}
}

// SetValue replaces the text of the active input
func (p *ScanPanel) SetValue(v string) {
	p.active().SetValue(v)
}

// ClearInputs empties both inputs after a successful submission
func (p *ScanPanel) ClearInputs() {
	p.idInput.SetValue("")
	p.urlInput.SetValue("")
}

// SetError shows msg as an error
func (p *ScanPanel) SetError(msg string) {
	p.message = msg
	p.isError = msg != ""
}

// SetNotice shows msg as an informational notice
func (p *ScanPanel) SetNotice(msg string) {
	p.message = msg
	p.isError = false
}

// ClearMessage hides the error/notice box
func (p *ScanPanel) ClearMessage() {
	p.message = ""
	p.isError = false
}

// Message returns the visible message and whether it is an error
func (p ScanPanel) Message() (string, bool) {
	return p.message, p.isError
}

// SetDisabled locks the input while a scan is running
func (p *ScanPanel) SetDisabled(disabled bool) {
	p.disabled = disabled
	if disabled {
		p.active().Blur()
	} else if p.focused {
		p.active().Focus()
	}
}

// Focus gives the active input keyboard focus
func (p *ScanPanel) Focus() {
	p.focused = true
	if !p.disabled {
		p.active().Focus()
	}
}

// Blur releases keyboard focus
func (p *ScanPanel) Blur() {
	p.focused = false
	p.active().Blur()
}

// Update forwards input events to the active field. Editing clears the
// current message.
func (p ScanPanel) Update(msg tea.Msg) (ScanPanel, tea.Cmd) {
	if !p.focused || p.disabled {
		return p, nil
	}

	before := p.Value()
	var cmd tea.Cmd
	if p.method == domain.InputByURL {
		p.urlInput, cmd = p.urlInput.Update(msg)
	} else {
		p.idInput, cmd = p.idInput.Update(msg)
	}
	if p.Value() != before {
		p.ClearMessage()
	}
	return p, cmd
}

// ButtonLabel returns the submit button text
func ButtonLabel(state domain.ScanState, submitting bool) string {
	switch {
	case submitting:
		return ButtonStarting
	case state == domain.ScanStateScanning:
		return ButtonScanning
	default:
		return ButtonStart
	}
}

func stateStyle(state domain.ScanState) lipgloss.Style {
	switch state {
	case domain.ScanStateScanning:
		return styles.SuccessStyle
	case domain.ScanStateError:
		return styles.ErrorStyle
	default:
		return styles.SubtitleStyle
	}
}

// View renders the panel
func (p ScanPanel) View(v ScanPanelView) string {
	width := max(v.Width, 20)
	inner := width - 2

	lines := []string{styles.PanelTitleStyle.Render(ScanPanelTitle)}

	status := stateStyle(v.State).Render(v.State.Title())
	if v.State == domain.ScanStateScanning {
		status = styles.Spinner(v.Frame) + " " + status
	}
	lines = append(lines, styles.LabelStyle.Render("Current Status: ")+status)

	if v.LastScan != nil {
		lines = append(lines, styles.LabelStyle.Render("Last Scan: ")+styles.SubtitleStyle.Render(FormatTime(*v.LastScan)))
	}
	if v.State == domain.ScanStateScanning && v.CurrentModel != 0 {
		lines = append(lines, styles.LabelStyle.Render("Model: ")+styles.SubtitleStyle.Render(fmt.Sprintf("%d", v.CurrentModel)))
	}

	if p.message != "" {
		box := styles.NoticeBoxStyle
		if p.isError {
			box = styles.ErrorBoxStyle
		}
		lines = append(lines, "", box.Width(inner).Render(p.message))
	}

	lines = append(lines, "", p.renderTabs())

	inputStyle := styles.InputStyle
	if p.disabled {
		inputStyle = styles.InputDisabledStyle
	}
	field := p.idInput
	if p.method == domain.InputByURL {
		field = p.urlInput
	}
	field.Width = max(inner-4, 1)
	lines = append(lines, inputStyle.Width(inner-2).Render(field.View()))

	label := ButtonLabel(v.State, v.Submitting)
	button := styles.ButtonStyle
	if v.Submitting || v.State == domain.ScanStateScanning {
		button = styles.ButtonDisabledStyle
	}
	lines = append(lines, button.Width(inner).Align(lipgloss.Center).Render(label))

	return styles.PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (p ScanPanel) renderTabs() string {
	tab := func(m domain.InputMethod) string {
		if m == p.method {
			return styles.TabActiveStyle.Render(m.Label())
		}
		return styles.TabInactiveStyle.Render(m.Label())
	}
	return tab(domain.InputByID) + " " + tab(domain.InputByURL)
}
