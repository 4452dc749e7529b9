package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/adapter/source/scraper"
	"github.com/mmcdole/lorascan/internal/domain"
)

const probeTimeout = 10 * time.Second

// Backend combines every interface the scraper backend must implement.
type Backend interface {
	domain.ScanRepository   // Submissions: CheckModel, StartScan, ScanDirect, ClearStatus
	domain.StatusRepository // Polling: ScanStatus
	domain.HealthChecker    // Setup probe: Health
}

// NewClient creates a Backend for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (Backend, error) {
	normalized, err := NormalizeURL(baseURL)
	if err != nil {
		return nil, err
	}
	return scraper.NewClient(normalized, timeout, logger), nil
}

// NewClientFromConfig creates a Backend from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (Backend, error) {
	return NewClient(cfg.Server.URL, cfg.Server.Timeout, logger)
}

// NormalizeURL validates a backend URL and strips trailing slashes.
// A bare host:port gets an http:// scheme.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("server URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server URL has no host")
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// Probe checks that a scraper backend answers at baseURL.
// Returns the normalized URL on success.
func Probe(ctx context.Context, baseURL string, logger *slog.Logger) (string, error) {
	normalized, err := NormalizeURL(baseURL)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client := scraper.NewClient(normalized, probeTimeout, logger)
	if err := client.Health(ctx); err != nil {
		return "", fmt.Errorf("no scraper backend at %s: %w", normalized, err)
	}
	return normalized, nil
}
