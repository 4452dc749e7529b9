package scan

import (
	"context"
	"time"

	"github.com/mmcdole/lorascan/internal/domain"
)

// Update is one poll observed by Watch
type Update struct {
	State    domain.ScanState
	Snapshot domain.StatusSnapshot
	Message  string // error text when State is error
	Err      error  // transport error when the poll itself failed
}

// Watch polls the status endpoint every interval until the machine leaves
// the scanning state or ctx is cancelled. The first poll happens one
// interval after the call, matching the TUI loop.
func Watch(ctx context.Context, svc *Service, m *Machine, interval time.Duration, onUpdate func(Update)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	if !m.Polling() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		snap, err := svc.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.Fail()
			onUpdate(Update{State: m.State(), Message: m.Error(), Err: err})
			return err
		}

		keep := m.Apply(snap)
		onUpdate(Update{State: m.State(), Snapshot: snap, Message: m.Error()})
		if !keep {
			return nil
		}
	}
}
