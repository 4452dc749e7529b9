package domain

import (
	"fmt"
	"strings"
	"time"
)

// ScanState is the client-side view of the backend scanner
type ScanState string

const (
	ScanStateIdle     ScanState = "idle"
	ScanStateScanning ScanState = "scanning"
	ScanStateError    ScanState = "error"
)

// Title returns the state with its first letter capitalised for display
func (s ScanState) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ResultStatus is the outcome recorded by the backend for one scan
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// ScanResult is a completed scan as reported by the backend
type ScanResult struct {
	ID         string
	Timestamp  time.Time
	ModelID    int64
	ModelName  string
	Author     string
	FoundItems int
	Status     ResultStatus
}

// DisplayName returns the model name, falling back to the numeric ID
func (r ScanResult) DisplayName() string {
	if r.ModelName != "" {
		return r.ModelName
	}
	return fmt.Sprintf("Model %d", r.ModelID)
}

// Succeeded reports whether the backend saved the scan
func (r ScanResult) Succeeded() bool {
	return r.Status == ResultSuccess
}

// StatusSnapshot is one response from the scan-status endpoint
type StatusSnapshot struct {
	Status       ScanState
	LastScan     *time.Time
	CurrentModel int64 // 0 when no scan is running
	Results      []ScanResult
	Result       *ScanResult // set when the latest-only form was requested
	Error        string
}

// Latest returns the most recent result carried by the snapshot
func (s StatusSnapshot) Latest() (ScanResult, bool) {
	if s.Result != nil {
		return *s.Result, true
	}
	if len(s.Results) == 0 {
		return ScanResult{}, false
	}
	return s.Results[len(s.Results)-1], true
}

// ModelCheck is the backend's answer to "has this model been scanned?"
type ModelCheck struct {
	Exists  bool
	Message string
}

// StartOutcome is the payload returned when a scan is started
type StartOutcome struct {
	Status  ScanState
	Message string
	ModelID int64
	Error   string
}

// DirectOutcome is the payload returned by the synchronous scan endpoint
type DirectOutcome struct {
	Success   bool
	ModelID   string
	ModelName string
	Error     string
}

// InputMethod selects how the model reference is typed in
type InputMethod string

const (
	InputByID  InputMethod = "id"
	InputByURL InputMethod = "url"
)

// Toggle returns the other input method
func (m InputMethod) Toggle() InputMethod {
	if m == InputByURL {
		return InputByID
	}
	return InputByURL
}

// Label returns the tab label for the method
func (m InputMethod) Label() string {
	if m == InputByURL {
		return "Model URL"
	}
	return "Model ID"
}

// Placeholder returns the input placeholder for the method
func (m InputMethod) Placeholder() string {
	if m == InputByURL {
		return "Enter CivitAI Model URL"
	}
	return "Enter CivitAI Model ID"
}

// ModelRef is a validated model reference ready to be sent to the backend
type ModelRef struct {
	ID  int64
	Raw string
}

// String returns the decimal model ID
func (r ModelRef) String() string {
	return fmt.Sprintf("%d", r.ID)
}
