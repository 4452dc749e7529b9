package tui

import (
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/results"
	"github.com/mmcdole/lorascan/internal/scan"
)

// Message types for the TUI

// TickMsg advances the spinner animation
type TickMsg struct{}

// SubmitDoneMsg signals that a submission round trip finished
type SubmitDoneMsg struct {
	Result scan.SubmitResult
}

// StatusTickMsg asks for one status poll. Gen is the machine generation
// the tick was scheduled under; a mismatch means the tick is stale.
type StatusTickMsg struct {
	Gen uint64
}

// StatusPolledMsg carries the answer to a status poll
type StatusPolledMsg struct {
	Gen      uint64
	Snapshot domain.StatusSnapshot
	Err      error
}

// ResultsTickMsg asks for a results re-fetch
type ResultsTickMsg struct{}

// ResultsFetchedMsg carries a fetched results page
type ResultsFetchedMsg struct {
	Page       results.Page
	Err        error
	Reschedule bool // part of the periodic loop, schedule the next fetch
}

// StatusClearedMsg signals that the backend scanner was reset
type StatusClearedMsg struct {
	Err error
}

// DismissNoticeMsg hides the notice with the given ID if still shown
type DismissNoticeMsg struct {
	ID int
}

// HistoryLoadedMsg carries local history search results
type HistoryLoadedMsg struct {
	Query   string
	Results []domain.ScanResult
	Err     error
}

// HistoryClearedMsg signals that local history was wiped
type HistoryClearedMsg struct {
	Err error
}
