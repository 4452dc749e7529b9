package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/adapter/source/scraper"
	"github.com/mmcdole/lorascan/internal/backendtest"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/results"
	"github.com/mmcdole/lorascan/internal/scan"
	"github.com/mmcdole/lorascan/internal/tui/components"
)

func newTestModel(t *testing.T, mode adapter.ResultsMode, opts Options) (Model, *backendtest.Fake) {
	t.Helper()
	fake := backendtest.New(t)
	client := scraper.NewClient(fake.URL, 2*time.Second, adapter.NullLogger())
	scanSvc := scan.NewService(client, client, adapter.NullLogger())
	resultsSvc := results.NewService(client, domain.NoOpHistory{}, mode, 0, adapter.NullLogger())

	m := NewModel(scanSvc, resultsSvc, opts)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, fake
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSubmit_EnterStartsScanning(t *testing.T) {
	m, fake := newTestModel(t, adapter.ResultsModeLatest, Options{})
	m.ScanPanel.SetValue("4201")

	m, cmd := updateCmd(t, m, enterKey)
	if !m.Submitting || cmd == nil {
		t.Fatal("enter should start a submission")
	}
	if got := components.ButtonLabel(m.Machine.State(), m.Submitting); got != "Starting..." {
		t.Errorf("button = %q, want Starting...", got)
	}
	if !m.ScanPanel.Disabled() {
		t.Error("input should be disabled while submitting")
	}

	done, ok := cmd().(SubmitDoneMsg)
	if !ok {
		t.Fatalf("expected SubmitDoneMsg")
	}
	m, cmd = updateCmd(t, m, done)

	if m.Machine.State() != domain.ScanStateScanning {
		t.Errorf("state = %q, want scanning", m.Machine.State())
	}
	if m.Submitting {
		t.Error("submitting flag should be cleared")
	}
	if !m.ScanPanel.Disabled() {
		t.Error("input should stay disabled while scanning")
	}
	if m.ScanPanel.Value() != "" {
		t.Errorf("input not cleared: %q", m.ScanPanel.Value())
	}
	if cmd == nil {
		t.Error("expected the first status tick to be scheduled")
	}
	if got := components.ButtonLabel(m.Machine.State(), m.Submitting); got != "Scanning..." {
		t.Errorf("button = %q, want Scanning...", got)
	}

	bodies := fake.StartBodies()
	if len(bodies) != 1 || bodies[0].ModelID != 4201 {
		t.Errorf("start bodies = %+v", bodies)
	}
}

func TestSubmit_InvalidInputMakesNoRequest(t *testing.T) {
	m, fake := newTestModel(t, adapter.ResultsModeLatest, Options{})

	m, cmd := updateCmd(t, m, enterKey)
	if cmd != nil || m.Submitting {
		t.Fatal("empty input must not submit")
	}
	if msg, isErr := m.ScanPanel.Message(); msg != "Please enter a model ID" || !isErr {
		t.Errorf("message = %q (error=%v)", msg, isErr)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m.ScanPanel.SetValue("https://civitai.com/images/12")
	m, cmd = updateCmd(t, m, enterKey)
	if cmd != nil {
		t.Fatal("bad URL must not submit")
	}
	if msg, _ := m.ScanPanel.Message(); msg != "Invalid CivitAI URL format" {
		t.Errorf("message = %q", msg)
	}
	if n := fake.Calls("/check-model") + fake.Calls("/start-scan"); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestSubmit_ExistingModelShowsMessage(t *testing.T) {
	m, fake := newTestModel(t, adapter.ResultsModeLatest, Options{})
	fake.SetExisting(77, "Model 77 was already scanned")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m = update(t, m, SubmitDoneMsg{Result: m.ScanSvc.Submit(ctx, domain.InputByID, "77")})

	if msg, _ := m.ScanPanel.Message(); msg != "Model 77 was already scanned" {
		t.Errorf("message = %q", msg)
	}
	if m.Machine.State() != domain.ScanStateIdle {
		t.Errorf("state = %q, want idle", m.Machine.State())
	}
	if fake.Calls("/start-scan") != 0 {
		t.Error("start-scan must not be called for a known model")
	}
}

func startScanning(t *testing.T, m Model) (Model, uint64) {
	t.Helper()
	m = update(t, m, SubmitDoneMsg{Result: scan.SubmitResult{
		Outcome: scan.OutcomeStarted,
		Ref:     domain.ModelRef{ID: 9},
	}})
	if !m.Machine.Polling() {
		t.Fatal("expected polling")
	}
	return m, m.Machine.Generation()
}

func TestStatusTick_StaleGenerationIgnored(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{})
	m, gen := startScanning(t, m)

	if _, cmd := updateCmd(t, m, StatusTickMsg{Gen: gen + 1}); cmd != nil {
		t.Error("stale tick should be dropped")
	}
	if _, cmd := updateCmd(t, m, StatusTickMsg{Gen: gen}); cmd == nil {
		t.Error("current tick should poll")
	}
}

func TestStatusPolled_IdleStopsPolling(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{})
	m, gen := startScanning(t, m)

	last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m, cmd := updateCmd(t, m, StatusPolledMsg{Gen: gen, Snapshot: domain.StatusSnapshot{
		Status:   domain.ScanStateIdle,
		LastScan: &last,
	}})

	if m.Machine.State() != domain.ScanStateIdle {
		t.Errorf("state = %q, want idle", m.Machine.State())
	}
	if m.ScanPanel.Disabled() {
		t.Error("input should be enabled again")
	}
	if m.Machine.LastScan() == nil || !m.Machine.LastScan().Equal(last) {
		t.Errorf("lastScan = %v", m.Machine.LastScan())
	}
	if cmd == nil {
		t.Error("completion should refresh results")
	}

	// The tick scheduled before completion is now stale
	if _, cmd := updateCmd(t, m, StatusTickMsg{Gen: gen}); cmd != nil {
		t.Error("tick after completion should be dropped")
	}
}

func TestStatusPolled_ScanningKeepsPolling(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{})
	m, gen := startScanning(t, m)

	m, cmd := updateCmd(t, m, StatusPolledMsg{Gen: gen, Snapshot: domain.StatusSnapshot{
		Status:       domain.ScanStateScanning,
		CurrentModel: 9,
	}})
	if cmd == nil {
		t.Fatal("expected the next tick to be scheduled")
	}
	if m.Machine.CurrentModel() != 9 {
		t.Errorf("currentModel = %d", m.Machine.CurrentModel())
	}
}

func TestStatusPolled_FailureSetsError(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{})
	m, gen := startScanning(t, m)

	m, cmd := updateCmd(t, m, StatusPolledMsg{Gen: gen, Err: errors.New("connection refused")})
	if cmd != nil {
		t.Error("polling should halt on failure")
	}
	if m.Machine.State() != domain.ScanStateError {
		t.Errorf("state = %q, want error", m.Machine.State())
	}
	if msg, isErr := m.ScanPanel.Message(); msg != scan.MsgStatusUnavailable || !isErr {
		t.Errorf("message = %q (error=%v)", msg, isErr)
	}
}

func TestStatusPolled_ErrorStatusShowsBackendError(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{})
	m, gen := startScanning(t, m)

	m = update(t, m, StatusPolledMsg{Gen: gen, Snapshot: domain.StatusSnapshot{
		Status: domain.ScanStateError,
		Error:  "CivitAI rate limit",
	}})
	if msg, _ := m.ScanPanel.Message(); msg != "CivitAI rate limit" {
		t.Errorf("message = %q", msg)
	}
}

func TestResults_EmptyStateText(t *testing.T) {
	tests := []struct {
		mode adapter.ResultsMode
		want string
	}{
		{adapter.ResultsModeLatest, "No recent scan performed."},
		{adapter.ResultsModeList, "No scans performed yet."},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			m, _ := newTestModel(t, tt.mode, Options{})
			m = update(t, m, ResultsFetchedMsg{})
			if view := m.View(); !strings.Contains(view, tt.want) {
				t.Errorf("view missing %q", tt.want)
			}
		})
	}
}

func TestResults_SuccessClearsError(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeList, Options{})

	m = update(t, m, ResultsFetchedMsg{Err: errors.New("boom")})
	if !strings.Contains(m.View(), "Failed to load scan results") {
		t.Fatal("expected error text")
	}

	page := results.Page{Results: []domain.ScanResult{{
		ModelID:   5,
		ModelName: "Ink Sketch",
		Author:    "mira",
		Status:    domain.ResultSuccess,
		Timestamp: time.Now(),
	}}}
	m, cmd := updateCmd(t, m, ResultsFetchedMsg{Page: page, Reschedule: true})

	view := m.View()
	if strings.Contains(view, "Failed to load scan results") {
		t.Error("error should be cleared by a successful fetch")
	}
	if !strings.Contains(view, "Ink Sketch") || !strings.Contains(view, "by mira") {
		t.Error("expected the result card")
	}
	if cmd == nil {
		t.Error("periodic fetch should reschedule")
	}
}

func TestResults_LatestKeepsPreviousOnEmpty(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{})

	page := results.Page{Results: []domain.ScanResult{{ModelID: 8, Status: domain.ResultError}}}
	m = update(t, m, ResultsFetchedMsg{Page: page})
	m = update(t, m, ResultsFetchedMsg{})

	if !strings.Contains(m.View(), "Model 8") {
		t.Error("latest mode should keep the previous result")
	}
}

func TestDirectMode_DuplicateAutoDismisses(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{SubmitMode: adapter.SubmitModeDirect})

	m, cmd := updateCmd(t, m, SubmitDoneMsg{Result: scan.SubmitResult{
		Outcome: scan.OutcomeDuplicate,
		Message: scan.MsgDuplicate,
	}})
	if cmd == nil {
		t.Fatal("expected a dismiss timer")
	}
	if msg, _ := m.ScanPanel.Message(); msg != scan.MsgDuplicate {
		t.Fatalf("message = %q", msg)
	}

	// A timer from an older notice must not hide the current one
	m = update(t, m, DismissNoticeMsg{ID: m.noticeID - 1})
	if msg, _ := m.ScanPanel.Message(); msg == "" {
		t.Error("stale dismiss cleared the notice")
	}

	m = update(t, m, DismissNoticeMsg{ID: m.noticeID})
	if msg, _ := m.ScanPanel.Message(); msg != "" {
		t.Errorf("notice not dismissed: %q", msg)
	}
}

func TestDirectMode_DismissKeepsLaterError(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{SubmitMode: adapter.SubmitModeDirect})

	m = update(t, m, SubmitDoneMsg{Result: scan.SubmitResult{
		Outcome: scan.OutcomeDuplicate,
		Message: scan.MsgDuplicate,
	}})
	dupID := m.noticeID

	m = update(t, m, SubmitDoneMsg{Result: scan.SubmitResult{
		Outcome: scan.OutcomeFailed,
		Message: scan.MsgStartFailed,
	}})
	m = update(t, m, DismissNoticeMsg{ID: dupID})

	if msg, isErr := m.ScanPanel.Message(); msg != scan.MsgStartFailed || !isErr {
		t.Errorf("message = %q (error=%v), want the later failure", msg, isErr)
	}
}

func TestClearStatus_ResetsMachine(t *testing.T) {
	m, fake := newTestModel(t, adapter.ResultsModeLatest, Options{})
	m, gen := startScanning(t, m)

	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("ctrl+r should clear the backend status")
	}
	m = update(t, m, cmd())

	if m.Machine.State() != domain.ScanStateIdle || m.ScanPanel.Disabled() {
		t.Errorf("state = %q disabled = %v", m.Machine.State(), m.ScanPanel.Disabled())
	}
	if fake.Calls("/clear-status") != 1 {
		t.Errorf("clear-status calls = %d", fake.Calls("/clear-status"))
	}
	if _, cmd := updateCmd(t, m, StatusTickMsg{Gen: gen}); cmd != nil {
		t.Error("ticks from before the reset should be stale")
	}
}

func TestQuit_OnlyOutsideInput(t *testing.T) {
	m, _ := newTestModel(t, adapter.ResultsModeLatest, Options{})

	m = update(t, m, runeKey("q"))
	if m.ScanPanel.Value() != "q" {
		t.Fatalf("q should be typed into the input, got %q", m.ScanPanel.Value())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Focus != FocusResults {
		t.Fatal("esc should focus the results panel")
	}
	if _, cmd := updateCmd(t, m, runeKey("q")); cmd == nil {
		t.Error("q should quit outside the input")
	}
}
