package scan

import (
	"time"

	"github.com/mmcdole/lorascan/internal/domain"
)

const (
	// DefaultPollInterval is the fixed re-fetch period while scanning
	DefaultPollInterval = 3 * time.Second

	MsgStatusUnavailable = "Failed to fetch scan status"
	MsgScanFailed        = "Scan failed"
)

// Machine tracks the scanner status between polls.
//
// Transitions: idle -> scanning on Begin; scanning -> idle|error on a
// terminal snapshot or Fail. Every transition that stops polling bumps the
// generation, which invalidates ticks scheduled under the previous one.
// Machine is not safe for concurrent use; it lives on the UI goroutine.
type Machine struct {
	state        domain.ScanState
	lastScan     *time.Time
	currentModel int64
	errMsg       string
	generation   uint64
}

// NewMachine returns a machine in the idle state
func NewMachine() *Machine {
	return &Machine{state: domain.ScanStateIdle}
}

func (m *Machine) State() domain.ScanState { return m.state }
func (m *Machine) LastScan() *time.Time { return m.lastScan }
func (m *Machine) CurrentModel() int64 { return m.currentModel }
func (m *Machine) Error() string { return m.errMsg }
func (m *Machine) Generation() uint64 { return m.generation }

// Polling reports whether status ticks should be scheduled
func (m *Machine) Polling() bool {
	return m.state == domain.ScanStateScanning
}

// Current reports whether a tick scheduled under gen is still live
func (m *Machine) Current(gen uint64) bool {
	return m.Polling() && gen == m.generation
}

// Begin enters scanning after a start-scan request was accepted.
// Returns the generation the first tick must carry.
func (m *Machine) Begin(modelID int64) uint64 {
	m.generation++
	m.state = domain.ScanStateScanning
	m.currentModel = modelID
	m.errMsg = ""
	return m.generation
}

// Apply folds one status response into the machine.
// Returns true when polling should continue.
func (m *Machine) Apply(snap domain.StatusSnapshot) bool {
	if snap.LastScan != nil {
		m.lastScan = snap.LastScan
	}
	if !m.Polling() {
		return false
	}

	m.currentModel = snap.CurrentModel
	switch snap.Status {
	case domain.ScanStateIdle:
		m.stop(domain.ScanStateIdle, "")
		return false
	case domain.ScanStateError:
		msg := snap.Error
		if msg == "" {
			msg = MsgScanFailed
		}
		m.stop(domain.ScanStateError, msg)
		return false
	default:
		return true
	}
}

// Fail records an unreachable status endpoint and halts polling
func (m *Machine) Fail() {
	m.stop(domain.ScanStateError, MsgStatusUnavailable)
}

// Reject records a start-scan request the backend refused
func (m *Machine) Reject(msg string) {
	m.stop(domain.ScanStateError, msg)
}

// Reset returns to idle, e.g. after the backend status was cleared
func (m *Machine) Reset() {
	m.stop(domain.ScanStateIdle, "")
}

// Observe records informational fields from a snapshot fetched outside the
// poll loop (the results panel) without changing state
func (m *Machine) Observe(snap domain.StatusSnapshot) {
	if snap.LastScan != nil {
		m.lastScan = snap.LastScan
	}
}

func (m *Machine) stop(state domain.ScanState, msg string) {
	m.generation++
	m.state = state
	m.errMsg = msg
	if state != domain.ScanStateScanning {
		m.currentModel = 0
	}
}
