package scan

import (
	"testing"
	"time"

	"github.com/mmcdole/lorascan/internal/domain"
)

func TestMachine_BeginStartsPolling(t *testing.T) {
	m := NewMachine()
	if m.State() != domain.ScanStateIdle || m.Polling() {
		t.Fatalf("new machine should be idle and not polling")
	}

	gen := m.Begin(42)
	if m.State() != domain.ScanStateScanning || !m.Polling() {
		t.Fatalf("expected scanning, got %q", m.State())
	}
	if !m.Current(gen) {
		t.Error("tick from Begin should be current")
	}
	if m.CurrentModel() != 42 {
		t.Errorf("currentModel = %d", m.CurrentModel())
	}
}

func TestMachine_ApplyKeepsPollingWhileScanning(t *testing.T) {
	m := NewMachine()
	gen := m.Begin(1)

	if !m.Apply(domain.StatusSnapshot{Status: domain.ScanStateScanning, CurrentModel: 1}) {
		t.Fatal("scanning snapshot should keep polling")
	}
	if !m.Current(gen) {
		t.Error("generation should not change while scanning")
	}
}

func TestMachine_IdleStopsPolling(t *testing.T) {
	m := NewMachine()
	gen := m.Begin(1)
	last := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	if m.Apply(domain.StatusSnapshot{Status: domain.ScanStateIdle, LastScan: &last}) {
		t.Fatal("idle snapshot should stop polling")
	}
	if m.State() != domain.ScanStateIdle {
		t.Errorf("state = %q", m.State())
	}
	if m.Current(gen) {
		t.Error("stale tick should be dropped after idle")
	}
	if m.LastScan() == nil || !m.LastScan().Equal(last) {
		t.Errorf("lastScan = %v", m.LastScan())
	}
}

func TestMachine_ErrorStopsPolling(t *testing.T) {
	m := NewMachine()
	m.Begin(1)

	if m.Apply(domain.StatusSnapshot{Status: domain.ScanStateError, Error: "Failed to fetch model 1"}) {
		t.Fatal("error snapshot should stop polling")
	}
	if m.State() != domain.ScanStateError || m.Error() != "Failed to fetch model 1" {
		t.Errorf("state=%q error=%q", m.State(), m.Error())
	}

	m.Begin(2)
	m.Apply(domain.StatusSnapshot{Status: domain.ScanStateError})
	if m.Error() != MsgScanFailed {
		t.Errorf("blank error should fall back to %q, got %q", MsgScanFailed, m.Error())
	}
}

func TestMachine_FailHaltsPolling(t *testing.T) {
	m := NewMachine()
	gen := m.Begin(1)
	m.Fail()

	if m.State() != domain.ScanStateError || m.Polling() || m.Current(gen) {
		t.Fatalf("Fail should halt polling, state=%q", m.State())
	}
	if m.Error() != MsgStatusUnavailable {
		t.Errorf("error = %q", m.Error())
	}
}

func TestMachine_ApplyIgnoredWhenNotScanning(t *testing.T) {
	m := NewMachine()
	if m.Apply(domain.StatusSnapshot{Status: domain.ScanStateScanning}) {
		t.Fatal("idle machine must not start polling from a snapshot")
	}
	if m.State() != domain.ScanStateIdle {
		t.Errorf("state = %q", m.State())
	}
}

func TestMachine_RestartAfterError(t *testing.T) {
	m := NewMachine()
	m.Reject("CivitAI unavailable")
	if m.State() != domain.ScanStateError {
		t.Fatalf("state = %q", m.State())
	}
	m.Begin(3)
	if m.Error() != "" || m.State() != domain.ScanStateScanning {
		t.Errorf("Begin should clear error, state=%q error=%q", m.State(), m.Error())
	}
	m.Reset()
	if m.State() != domain.ScanStateIdle || m.CurrentModel() != 0 {
		t.Errorf("Reset should return to idle, state=%q", m.State())
	}
}
