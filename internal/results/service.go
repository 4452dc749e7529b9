package results

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/domain"
)

// Panel texts per mode
const (
	TitleLatest = "Last Scan Result"
	TitleList   = "Scan Results"

	EmptyLatest = "No recent scan performed."
	EmptyList   = "No scans performed yet."

	ErrLatest = "Failed to load scan result"
	ErrList   = "Failed to load scan results"
)

// Page is one fetched set of results, newest first
type Page struct {
	Results  []domain.ScanResult
	Snapshot domain.StatusSnapshot
	NewLocal int // results recorded into history for the first time
}

// Service reads completed scans from the backend and mirrors them locally
type Service struct {
	status       domain.StatusRepository
	history      domain.HistoryStore
	mode         adapter.ResultsMode
	historyLimit int
	logger       *slog.Logger
}

// NewService creates a new results service
func NewService(
	status domain.StatusRepository,
	history domain.HistoryStore,
	mode adapter.ResultsMode,
	historyLimit int,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if history == nil {
		history = domain.NoOpHistory{}
	}
	if mode == "" {
		mode = adapter.ResultsModeLatest
	}
	return &Service{
		status:       status,
		history:      history,
		mode:         mode,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Mode returns the configured results mode
func (s *Service) Mode() adapter.ResultsMode { return s.mode }

// Title returns the panel heading
func (s *Service) Title() string {
	if s.mode == adapter.ResultsModeList {
		return TitleList
	}
	return TitleLatest
}

// EmptyText returns the text shown when there is nothing to render
func (s *Service) EmptyText() string {
	if s.mode == adapter.ResultsModeList {
		return EmptyList
	}
	return EmptyLatest
}

// ErrorText returns the text shown when fetching fails
func (s *Service) ErrorText() string {
	if s.mode == adapter.ResultsModeList {
		return ErrList
	}
	return ErrLatest
}

// Fetch reads the results collection (list mode) or the latest result
func (s *Service) Fetch(ctx context.Context) (Page, error) {
	latestOnly := s.mode == adapter.ResultsModeLatest
	snap, err := s.status.ScanStatus(ctx, latestOnly)
	if err != nil {
		s.logger.Warn("failed to fetch results", "error", err, "mode", s.mode)
		return Page{}, err
	}

	var page Page
	page.Snapshot = snap
	if latestOnly {
		if r, ok := snap.Latest(); ok {
			page.Results = []domain.ScanResult{r}
		}
	} else {
		page.Results = newestFirst(snap.Results)
	}

	if len(page.Results) > 0 {
		n, err := s.history.SaveResults(page.Results)
		if err != nil {
			s.logger.Error("failed to record history", "error", err)
		}
		page.NewLocal = n
		if n > 0 {
			s.logger.Info("recorded scan results", "new", n)
		}
	}
	return page, nil
}

// newestFirst reverses backend order (append order, oldest first)
func newestFirst(rs []domain.ScanResult) []domain.ScanResult {
	out := make([]domain.ScanResult, len(rs))
	for i, r := range rs {
		out[len(rs)-1-i] = r
	}
	return out
}

// History returns locally recorded results, newest first
func (s *Service) History() ([]domain.ScanResult, error) {
	return s.history.History(s.historyLimit)
}

// ClearHistory wipes the local history
func (s *Service) ClearHistory() error {
	return s.history.Clear()
}

// SearchHistory ranks history entries against query by model name, author
// and ID. An empty query returns the whole history.
func (s *Service) SearchHistory(query string) ([]domain.ScanResult, error) {
	hist, err := s.History()
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return hist, nil
	}

	targets := make([]string, len(hist))
	for i, r := range hist {
		targets[i] = searchText(r)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Stable(ranks)

	out := make([]domain.ScanResult, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, hist[rank.OriginalIndex])
	}
	s.logger.Debug("history search", "query", query, "matches", len(out))
	return out, nil
}

func searchText(r domain.ScanResult) string {
	return r.DisplayName() + " " + r.Author + " " + strconv.FormatInt(r.ModelID, 10)
}
