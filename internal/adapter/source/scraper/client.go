package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/lorascan/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Endpoint paths exposed by the scraper backend
const (
	pathStartScan   = "/start-scan"
	pathScanStatus  = "/scan-status"
	pathCheckModel  = "/check-model"
	pathScan        = "/scan"
	pathClearStatus = "/clear-status"
	pathHealth      = "/api/health"
)

// Client talks to the LoRA Scraper backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new scraper API client
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doJSON sends one request and decodes the JSON body into out.
// Non-2xx responses with a JSON body are decoded as well, so payload errors
// reach the caller; the status code is returned alongside.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) (int, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("scraper request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		c.logger.Error("scraper request failed", "error", err, "url", reqURL)
		return 0, fmt.Errorf("%w: %v", domain.ErrBackendOffline, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("scraper response", "status", resp.StatusCode, "path", path, "bytes", len(raw))

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			if resp.StatusCode >= 400 {
				c.logger.Error("scraper request error", "status", resp.StatusCode, "body", string(raw))
				return resp.StatusCode, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
			}
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
		return resp.StatusCode, nil
	}

	if resp.StatusCode >= 400 {
		c.logger.Error("scraper request error", "status", resp.StatusCode, "path", path)
		return resp.StatusCode, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// CheckModel asks whether the model was already scanned
func (c *Client) CheckModel(ctx context.Context, modelID int64) (domain.ModelCheck, error) {
	query := url.Values{}
	query.Set("modelId", strconv.FormatInt(modelID, 10))

	var resp CheckModelResponse
	if _, err := c.doJSON(ctx, http.MethodGet, pathCheckModel, query, nil, &resp); err != nil {
		return domain.ModelCheck{}, err
	}
	if resp.Error != "" {
		return domain.ModelCheck{}, domain.NewUserError(domain.ErrUnexpectedStatus, resp.Error)
	}
	return domain.ModelCheck{Exists: resp.Exists, Message: resp.Message}, nil
}

// StartScan queues a scan; payload errors come back in the outcome
func (c *Client) StartScan(ctx context.Context, modelID int64) (domain.StartOutcome, error) {
	var resp StartScanResponse
	status, err := c.doJSON(ctx, http.MethodPost, pathStartScan, nil, StartScanRequest{ModelID: modelID}, &resp)
	if err != nil {
		return domain.StartOutcome{}, err
	}
	out := MapStartOutcome(resp)
	if status >= 400 && out.Error == "" {
		out.Error = fmt.Sprintf("Backend returned status %d", status)
	}
	return out, nil
}

// ScanDirect runs the synchronous scan endpoint
func (c *Client) ScanDirect(ctx context.Context, modelID string) (domain.DirectOutcome, error) {
	var resp DirectScanResponse
	status, err := c.doJSON(ctx, http.MethodPost, pathScan, nil, DirectScanRequest{ModelID: modelID}, &resp)
	if err != nil {
		if status == http.StatusNotFound {
			return domain.DirectOutcome{}, domain.ErrModelNotFound
		}
		return domain.DirectOutcome{}, err
	}
	if status == http.StatusNotFound && resp.Error == "" {
		resp.Error = "not_found"
	}
	return MapDirectOutcome(resp), nil
}

// ScanStatus fetches the scanner status
func (c *Client) ScanStatus(ctx context.Context, latest bool) (domain.StatusSnapshot, error) {
	var query url.Values
	if latest {
		query = url.Values{}
		query.Set("latest", "true")
	}

	var resp StatusResponse
	status, err := c.doJSON(ctx, http.MethodGet, pathScanStatus, query, nil, &resp)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}
	if status >= 400 {
		msg := "scan status unavailable"
		if resp.Error != nil && *resp.Error != "" {
			msg = *resp.Error
		}
		return domain.StatusSnapshot{}, domain.NewUserError(domain.ErrUnexpectedStatus, msg)
	}
	return MapStatus(resp), nil
}

// ClearStatus resets the backend scanner to idle
func (c *Client) ClearStatus(ctx context.Context) error {
	var resp errorResponse
	if _, err := c.doJSON(ctx, http.MethodPost, pathClearStatus, nil, nil, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return domain.NewUserError(domain.ErrUnexpectedStatus, resp.Error)
	}
	return nil
}

// Health probes the backend liveness endpoint
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if _, err := c.doJSON(ctx, http.MethodGet, pathHealth, nil, nil, &resp); err != nil {
		return err
	}
	if !strings.EqualFold(resp.Status, "healthy") {
		return fmt.Errorf("%w: health status %q", domain.ErrUnexpectedStatus, resp.Status)
	}
	return nil
}

// IsOffline reports whether err means the backend could not be reached
func IsOffline(err error) bool {
	return errors.Is(err, domain.ErrBackendOffline)
}
