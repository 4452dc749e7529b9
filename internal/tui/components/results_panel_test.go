package components

import (
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/lorascan/internal/domain"
)

func TestStatusBadge_ShowsBackendStatus(t *testing.T) {
	tests := []struct {
		status domain.ResultStatus
		want   string
	}{
		{domain.ResultSuccess, "success"},
		{domain.ResultError, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r := domain.ScanResult{ModelID: 3, ModelName: "Ink Wash", Status: tt.status, Timestamp: time.Now()}
			card := RenderResultCard(r, nil, 80, false)
			if !strings.Contains(card, tt.want) {
				t.Errorf("card missing %q:\n%s", tt.want, card)
			}
			if strings.Contains(card, "Success") || strings.Contains(card, "Error") {
				t.Errorf("card should show the raw status:\n%s", card)
			}
		})
	}
}

func TestFilter_OffsetsIndexOriginalText(t *testing.T) {
	p := NewResultsPanel("Scan Results", "No scans performed yet.")
	p.SetResults([]domain.ScanResult{
		{ModelID: 1, ModelName: "İnk Wash", Status: domain.ResultSuccess},
		{ModelID: 2, ModelName: "Pastel", Status: domain.ResultSuccess},
	})
	p.Focus()
	p.ToggleFilter()
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("nk")})

	vis := p.Visible()
	if len(vis) != 1 || vis[0].ModelID != 1 {
		t.Fatalf("visible = %+v", vis)
	}
	// "İ" is two bytes, so 'n' starts at byte 2
	if got := p.matches[0].MatchedIndexes; !slices.Equal(got, []int{2, 3}) {
		t.Errorf("matched = %v, want [2 3]", got)
	}
}

func TestFilter_IgnoresCase(t *testing.T) {
	p := NewResultsPanel("Scan Results", "")
	p.SetResults([]domain.ScanResult{
		{ModelID: 1, ModelName: "Oil Paint", Author: "Kai"},
		{ModelID: 2, ModelName: "Pastel", Author: "mira"},
	})
	p.Focus()
	p.ToggleFilter()
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("KAI")})

	if vis := p.Visible(); len(vis) != 1 || vis[0].ModelID != 1 {
		t.Errorf("visible = %+v", vis)
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.IsFiltering() || len(p.Visible()) != 2 {
		t.Error("esc should clear the filter")
	}
}
