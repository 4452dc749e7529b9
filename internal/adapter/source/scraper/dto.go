package scraper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScanResultDTO is one result entry in the scan-status payload
type ScanResultDTO struct {
	ID         string    `json:"id"`
	Timestamp  Timestamp `json:"timestamp"`
	ModelID    FlexInt   `json:"modelId"`
	ModelName  string    `json:"modelName"`
	Author     string    `json:"author"`
	FoundItems int       `json:"foundItems"`
	Status     string    `json:"status"`
}

// StatusResponse is the GET /scan-status payload
type StatusResponse struct {
	Status       string          `json:"status"`
	LastScan     *Timestamp      `json:"lastScan"`
	CurrentModel *FlexInt        `json:"currentModel,omitempty"`
	Results      []ScanResultDTO `json:"results,omitempty"`
	Result       *ScanResultDTO  `json:"result,omitempty"`
	Error        *string         `json:"error,omitempty"`
}

// CheckModelResponse is the GET /check-model payload
type CheckModelResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StartScanRequest is the POST /start-scan body
type StartScanRequest struct {
	ModelID int64 `json:"modelId"`
}

// StartScanResponse is the POST /start-scan payload
type StartScanResponse struct {
	Status  string   `json:"status,omitempty"`
	Message string   `json:"message,omitempty"`
	ModelID *FlexInt `json:"modelId,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// DirectScanRequest is the POST /scan body
type DirectScanRequest struct {
	ModelID string `json:"modelId"`
}

// DirectScanResponse is the POST /scan payload
type DirectScanResponse struct {
	Success   bool   `json:"success"`
	ModelID   string `json:"modelId,omitempty"`
	ModelName string `json:"modelName,omitempty"`
	Error     string `json:"error,omitempty"`
}

// errorResponse is the shape of every JSON error body
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FlexInt decodes an integer sent either as a JSON number or a numeric string
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", data, err)
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(f), 10)), nil
}

// timestampLayouts lists formats the backend has been seen to emit.
// Naive ISO timestamps (no zone) are interpreted as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp decodes ISO-8601 timestamps with or without a zone
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// ParseTimestamp parses a backend timestamp
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		var (
			parsed time.Time
			err    error
		)
		if layout == time.RFC3339Nano {
			parsed, err = time.Parse(layout, s)
		} else {
			parsed, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
