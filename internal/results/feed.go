package results

import "github.com/mmcdole/lorascan/internal/domain"

// Feed holds what the results panel currently shows
type Feed struct {
	results []domain.ScanResult
	err     string
	loaded  bool
	keep    bool // keep the previous result when a fetch comes back empty
}

// NewFeed creates an empty feed. In latest mode an empty fetch keeps
// the last shown result.
func NewFeed(keepOnEmpty bool) *Feed {
	return &Feed{keep: keepOnEmpty}
}

// Apply records a successful fetch and clears any error
func (f *Feed) Apply(page Page) {
	f.loaded = true
	f.err = ""
	if len(page.Results) == 0 && f.keep {
		return
	}
	f.results = page.Results
}

// Fail records a failed fetch
func (f *Feed) Fail(msg string) {
	f.loaded = true
	f.err = msg
}

func (f *Feed) Results() []domain.ScanResult { return f.results }
func (f *Feed) Error() string { return f.err }
func (f *Feed) Loaded() bool { return f.loaded }

// Empty reports whether the empty-state text should be shown
func (f *Feed) Empty() bool {
	return f.err == "" && len(f.results) == 0
}
