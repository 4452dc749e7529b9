package domain

// HistoryStore mirrors scan results seen from the backend into local storage.
// Entries are keyed by (modelID, timestamp) so repeated polls are idempotent.
type HistoryStore interface {
	// SaveResults records results, returning how many were new
	SaveResults(results []ScanResult) (int, error)

	// History returns up to limit results, newest first (limit <= 0 means all)
	History(limit int) ([]ScanResult, error)

	// Clear wipes the local history
	Clear() error

	Close() error
}

// NoOpHistory discards everything (history disabled).
type NoOpHistory struct{}

func (NoOpHistory) SaveResults([]ScanResult) (int, error) { return 0, nil }
func (NoOpHistory) History(int) ([]ScanResult, error) { return nil, nil }
func (NoOpHistory) Clear() error { return nil }
func (NoOpHistory) Close() error { return nil }
