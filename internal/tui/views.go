package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/lorascan/internal/tui/components"
	"github.com/mmcdole/lorascan/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}
	if m.State == StateHistory {
		return m.HistoryModal.View()
	}

	contentHeight := m.Height - ChromeHeight
	scanView := components.ScanPanelView{
		State:        m.Machine.State(),
		LastScan:     m.Machine.LastScan(),
		CurrentModel: m.Machine.CurrentModel(),
		Submitting:   m.Submitting,
		Frame:        m.SpinnerFrame,
	}

	var content string
	if m.Width >= MinSplitWidth {
		// [Scanner Status | Results]
		leftWidth := m.Width * 2 / 5
		rightWidth := m.Width - leftWidth - 2

		scanView.Width = leftWidth
		left := m.border(FocusInput).Height(contentHeight - 2).Render(m.ScanPanel.View(scanView))
		right := m.border(FocusResults).Height(contentHeight - 2).Render(m.ResultsPanel.View(rightWidth-2, contentHeight-2))
		content = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	} else {
		// Narrow terminal: stack panels
		scanView.Width = m.Width - 2
		top := m.border(FocusInput).Render(m.ScanPanel.View(scanView))
		remaining := max(contentHeight-lipgloss.Height(top)-2, 4)
		bottom := m.border(FocusResults).Render(m.ResultsPanel.View(m.Width-4, remaining))
		content = lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())
}

func (m Model) border(f Focus) lipgloss.Style {
	if m.Focus == f {
		return styles.ActiveBorder
	}
	return styles.InactiveBorder
}

func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	var hints []string
	hint := func(k, desc string) {
		hints = append(hints, styles.AccentStyle.Render(k)+styles.DimStyle.Render(" "+desc))
	}
	if m.inputActive() {
		hint("enter", "scan")
		hint("tab", m.ScanPanel.Method().Toggle().Label())
		hint("esc", "results")
	} else {
		hint("/", "filter")
		hint("H", "history")
		hint("i", "input")
	}
	hint("C-r", "reset")
	center := strings.Join(hints, "  ")

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")
	if m.inputActive() {
		right = styles.AccentStyle.Render("C-c") + styles.DimStyle.Render(" quit")
	}

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
SCANNER                          RESULTS
  Enter      Start scan           j/k        Up/down
  Tab        Model ID / URL       g/G        First/last result
  Ctrl+r     Reset scanner        /          Filter
  Esc        Focus results        Esc        Clear filter
  i          Focus input          H          Local history

OTHER
  q          Quit (outside input)
  Ctrl+c     Quit
  ?          This help

Press Esc or ? to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}
