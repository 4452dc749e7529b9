package source_test

import (
	"context"
	"testing"

	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/adapter/source"
	"github.com/mmcdole/lorascan/internal/backendtest"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://localhost:5000/", "http://localhost:5000", false},
		{"  https://scraper.lan//  ", "https://scraper.lan", false},
		{"10.0.0.5:5000", "http://10.0.0.5:5000", false},
		{"", "", true},
		{"ftp://host", "", true},
		{"http://", "", true},
	}
	for _, tt := range tests {
		got, err := source.NormalizeURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProbe(t *testing.T) {
	fake := backendtest.New(t)

	got, err := source.Probe(context.Background(), fake.URL+"/", adapter.NullLogger())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if got != fake.URL {
		t.Errorf("Probe returned %q, want %q", got, fake.URL)
	}

	fake.Fail("/api/health", 503)
	if _, err := source.Probe(context.Background(), fake.URL, adapter.NullLogger()); err == nil {
		t.Error("expected probe to fail on an unhealthy backend")
	}
}
