package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/results"
	"github.com/mmcdole/lorascan/internal/scan"
)

// Command factories for async operations

const requestTimeout = 30 * time.Second

// SubmitCmd submits a scan through the configured endpoint
func SubmitCmd(svc *scan.Service, mode adapter.SubmitMode, method domain.InputMethod, raw string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if mode == adapter.SubmitModeDirect {
			return SubmitDoneMsg{Result: svc.SubmitDirect(ctx, method, raw)}
		}
		return SubmitDoneMsg{Result: svc.Submit(ctx, method, raw)}
	}
}

// StatusTickCmd schedules the next status poll under gen
func StatusTickCmd(interval time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return StatusTickMsg{Gen: gen}
	})
}

// PollStatusCmd fetches one status snapshot
func PollStatusCmd(svc *scan.Service, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		snap, err := svc.Poll(ctx)
		return StatusPolledMsg{Gen: gen, Snapshot: snap, Err: err}
	}
}

// ResultsTickCmd schedules the next results fetch
func ResultsTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return ResultsTickMsg{}
	})
}

// FetchResultsCmd fetches the results panel contents
func FetchResultsCmd(svc *results.Service, reschedule bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		page, err := svc.Fetch(ctx)
		return ResultsFetchedMsg{Page: page, Err: err, Reschedule: reschedule}
	}
}

// ClearStatusCmd resets the backend scanner
func ClearStatusCmd(svc *scan.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return StatusClearedMsg{Err: svc.ClearStatus(ctx)}
	}
}

// DismissNoticeCmd hides notice id after d
func DismissNoticeCmd(d time.Duration, id int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissNoticeMsg{ID: id}
	})
}

// SearchHistoryCmd ranks local history against query
func SearchHistoryCmd(svc *results.Service, query string) tea.Cmd {
	return func() tea.Msg {
		found, err := svc.SearchHistory(query)
		return HistoryLoadedMsg{Query: query, Results: found, Err: err}
	}
}

// ClearHistoryCmd wipes local history
func ClearHistoryCmd(svc *results.Service) tea.Cmd {
	return func() tea.Msg {
		return HistoryClearedMsg{Err: svc.ClearHistory()}
	}
}

// TickCmd drives the spinner
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}
