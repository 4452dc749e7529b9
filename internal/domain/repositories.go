package domain

import (
	"context"
)

// ScanRepository starts scans and answers lookups against the scraper backend
type ScanRepository interface {
	// CheckModel asks whether a model was already scanned or stored
	CheckModel(ctx context.Context, modelID int64) (ModelCheck, error)

	// StartScan queues an asynchronous scan of the model
	StartScan(ctx context.Context, modelID int64) (StartOutcome, error)

	// ScanDirect runs a synchronous scan (the older single-request endpoint)
	ScanDirect(ctx context.Context, modelID string) (DirectOutcome, error)

	// ClearStatus resets the backend scanner to idle
	ClearStatus(ctx context.Context) error
}

// StatusRepository reads the backend scanner status
type StatusRepository interface {
	// ScanStatus returns the current status; latest asks for the
	// single-result form of the payload
	ScanStatus(ctx context.Context, latest bool) (StatusSnapshot, error)
}

// HealthChecker probes backend liveness
type HealthChecker interface {
	Health(ctx context.Context) error
}
