package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/results"
	"github.com/mmcdole/lorascan/internal/scan"
	"github.com/mmcdole/lorascan/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateMain ApplicationState = iota
	StateHelp
	StateHistory
)

// Focus selects which panel receives keys
type Focus int

const (
	FocusInput Focus = iota
	FocusResults
)

const (
	spinnerInterval = 100 * time.Millisecond

	// Side-by-side panels below this width are stacked instead
	MinSplitWidth = 90

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// Options tune the model's timing and endpoints
type Options struct {
	SubmitMode      adapter.SubmitMode
	PollInterval    time.Duration
	ResultsInterval time.Duration
	DismissAfter    time.Duration
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool
	Focus Focus

	// Services
	ScanSvc    *scan.Service
	ResultsSvc *results.Service

	// Scanner status and results shown by the panels
	Machine *scan.Machine
	Feed    *results.Feed

	// UI Components
	ScanPanel    components.ScanPanel
	ResultsPanel components.ResultsPanel
	HistoryModal components.HistoryModal

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	Submitting   bool
	SpinnerFrame int

	opts     Options
	noticeID int // bumped on every scan panel message change
}

// NewModel creates a new application model
func NewModel(scanSvc *scan.Service, resultsSvc *results.Service, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = scan.DefaultPollInterval
	}
	if opts.ResultsInterval <= 0 {
		opts.ResultsInterval = opts.PollInterval
	}
	if opts.DismissAfter <= 0 {
		opts.DismissAfter = 5 * time.Second
	}
	if opts.SubmitMode == "" {
		opts.SubmitMode = adapter.SubmitModeStartScan
	}

	return Model{
		State:        StateMain,
		Focus:        FocusInput,
		ScanSvc:      scanSvc,
		ResultsSvc:   resultsSvc,
		Machine:      scan.NewMachine(),
		Feed:         results.NewFeed(resultsSvc.Mode() == adapter.ResultsModeLatest),
		ScanPanel:    components.NewScanPanel(),
		ResultsPanel: components.NewResultsPanel(resultsSvc.Title(), resultsSvc.EmptyText()),
		HistoryModal: components.NewHistoryModal(),
		opts:         opts,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		FetchResultsCmd(m.ResultsSvc, true),
		TickCmd(spinnerInterval),
		textinput.Blink,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.HistoryModal.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(spinnerInterval)

	case SubmitDoneMsg:
		return m.handleSubmitDone(msg.Result)

	case StatusTickMsg:
		if !m.Machine.Current(msg.Gen) {
			return m, nil
		}
		return m, PollStatusCmd(m.ScanSvc, msg.Gen)

	case StatusPolledMsg:
		return m.handleStatusPolled(msg)

	case ResultsTickMsg:
		return m, FetchResultsCmd(m.ResultsSvc, true)

	case ResultsFetchedMsg:
		if msg.Err != nil {
			m.Feed.Fail(m.ResultsSvc.ErrorText())
			m.ResultsPanel.SetError(m.Feed.Error())
		} else {
			m.Feed.Apply(msg.Page)
			m.ResultsPanel.SetResults(m.Feed.Results())
			m.Machine.Observe(msg.Page.Snapshot)
		}
		if msg.Reschedule {
			return m, ResultsTickCmd(m.opts.ResultsInterval)
		}
		return m, nil

	case StatusClearedMsg:
		if msg.Err != nil {
			m.setStatus(domain.UserMessage(msg.Err, scan.MsgClearFailed), true)
			return m, nil
		}
		m.Machine.Reset()
		m.Submitting = false
		m.clearPanelMessage()
		m.syncScanPanel()
		m.setStatus("Scanner status cleared", false)
		return m, nil

	case DismissNoticeMsg:
		if msg.ID == m.noticeID {
			m.clearPanelMessage()
		}
		return m, nil

	case HistoryLoadedMsg:
		if msg.Query != m.HistoryModal.Query() {
			return m, nil
		}
		if msg.Err != nil {
			m.HistoryModal.SetError("Failed to load history")
		} else {
			m.HistoryModal.SetResults(msg.Results)
		}
		return m, nil

	case HistoryClearedMsg:
		if msg.Err != nil {
			m.HistoryModal.SetError("Failed to clear history")
			return m, nil
		}
		m.HistoryModal.SetResults(nil)
		m.setStatus("History cleared", false)
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards non-key messages (cursor blink) to inputs
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.State == StateHistory:
		m.HistoryModal, cmd, _ = m.HistoryModal.Update(msg)
	case m.ResultsPanel.IsFilterTyping():
		m.ResultsPanel, cmd = m.ResultsPanel.Update(msg)
	default:
		m.ScanPanel, cmd = m.ScanPanel.Update(msg)
	}
	return m, cmd
}

// inputActive reports whether typed characters go to the scan input
func (m Model) inputActive() bool {
	return m.Focus == FocusInput && !m.ScanPanel.Disabled()
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateMain
		}
		return m, nil

	case StateHistory:
		var cmd tea.Cmd
		var action components.HistoryAction
		m.HistoryModal, cmd, action = m.HistoryModal.Update(msg)
		switch action {
		case components.HistorySearch:
			return m, tea.Batch(cmd, SearchHistoryCmd(m.ResultsSvc, m.HistoryModal.Query()))
		case components.HistoryClear:
			return m, ClearHistoryCmd(m.ResultsSvc)
		case components.HistoryClose:
			m.State = StateMain
		}
		return m, cmd
	}

	if m.ResultsPanel.IsFilterTyping() {
		var cmd tea.Cmd
		m.ResultsPanel, cmd = m.ResultsPanel.Update(msg)
		return m, cmd
	}

	// Bindings shared by both panels
	switch {
	case key.Matches(msg, Keys.SwitchMethod):
		m.ScanPanel.ToggleMethod()
		return m, nil
	case key.Matches(msg, Keys.ClearStatus):
		return m, ClearStatusCmd(m.ScanSvc)
	}

	if m.inputActive() {
		switch {
		case key.Matches(msg, Keys.Submit):
			return m.submit()
		case key.Matches(msg, Keys.Escape):
			m.focusResults()
			return m, nil
		}
		var cmd tea.Cmd
		m.ScanPanel, cmd = m.ScanPanel.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil
	case key.Matches(msg, Keys.History):
		m.State = StateHistory
		return m, tea.Batch(m.HistoryModal.Show(), SearchHistoryCmd(m.ResultsSvc, ""))
	case key.Matches(msg, Keys.FocusInput):
		m.focusInput()
		return m, textinput.Blink
	case key.Matches(msg, Keys.Submit) && !m.ResultsPanel.IsFiltering():
		m.focusInput()
		return m, textinput.Blink
	}

	if m.Focus != FocusResults {
		m.focusResults()
	}
	var cmd tea.Cmd
	m.ResultsPanel, cmd = m.ResultsPanel.Update(msg)
	return m, cmd
}

func (m *Model) focusInput() {
	m.Focus = FocusInput
	m.ResultsPanel.Blur()
	m.ScanPanel.Focus()
}

func (m *Model) focusResults() {
	m.Focus = FocusResults
	m.ScanPanel.Blur()
	m.ResultsPanel.Focus()
}

// submit validates locally and sends the request. Invalid input never
// reaches the backend.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.Submitting || m.Machine.Polling() {
		return m, nil
	}

	method := m.ScanPanel.Method()
	raw := m.ScanPanel.Value()
	if _, err := scan.ParseModelRef(method, raw); err != nil {
		m.setPanelMessage(domain.UserMessage(err, scan.MsgInvalidID), true)
		return m, nil
	}

	m.Submitting = true
	m.clearPanelMessage()
	m.syncScanPanel()
	return m, SubmitCmd(m.ScanSvc, m.opts.SubmitMode, method, raw)
}

func (m Model) handleSubmitDone(res scan.SubmitResult) (tea.Model, tea.Cmd) {
	m.Submitting = false
	gen, poll := res.ApplyTo(m.Machine)

	var cmds []tea.Cmd
	switch res.Outcome {
	case scan.OutcomeStarted:
		m.clearPanelMessage()
	case scan.OutcomeScanned:
		m.setPanelMessage(res.Message, false)
		cmds = append(cmds, FetchResultsCmd(m.ResultsSvc, false))
	default:
		m.setPanelMessage(res.Message, true)
	}

	if res.ClearsInput() {
		m.ScanPanel.ClearInputs()
	}
	if res.Dismissable() {
		cmds = append(cmds, DismissNoticeCmd(m.opts.DismissAfter, m.noticeID))
	}
	if poll {
		cmds = append(cmds, StatusTickCmd(m.opts.PollInterval, gen))
	}

	m.syncScanPanel()
	return m, tea.Batch(cmds...)
}

func (m Model) handleStatusPolled(msg StatusPolledMsg) (tea.Model, tea.Cmd) {
	if !m.Machine.Current(msg.Gen) {
		return m, nil
	}

	if msg.Err != nil {
		m.Machine.Fail()
		m.setPanelMessage(m.Machine.Error(), true)
		m.syncScanPanel()
		return m, nil
	}

	if m.Machine.Apply(msg.Snapshot) {
		return m, StatusTickCmd(m.opts.PollInterval, msg.Gen)
	}

	if m.Machine.State() == domain.ScanStateError {
		m.setPanelMessage(m.Machine.Error(), true)
	}
	m.syncScanPanel()
	return m, FetchResultsCmd(m.ResultsSvc, false)
}

// syncScanPanel locks the input while a request or scan is in flight
func (m *Model) syncScanPanel() {
	m.ScanPanel.SetDisabled(m.Submitting || m.Machine.Polling())
}

// setPanelMessage replaces the scan panel message. Any pending dismiss
// timer belongs to the previous message and is invalidated.
func (m *Model) setPanelMessage(msg string, isErr bool) {
	m.noticeID++
	if isErr {
		m.ScanPanel.SetError(msg)
	} else {
		m.ScanPanel.SetNotice(msg)
	}
}

func (m *Model) clearPanelMessage() {
	m.noticeID++
	m.ScanPanel.ClearMessage()
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.StatusMsg = msg
	m.StatusIsErr = isErr
}
