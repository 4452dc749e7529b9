package scraper

import (
	"strings"

	"github.com/mmcdole/lorascan/internal/domain"
)

// MapResult converts a wire result to a domain result
func MapResult(r ScanResultDTO) domain.ScanResult {
	status := domain.ResultError
	if strings.EqualFold(r.Status, string(domain.ResultSuccess)) {
		status = domain.ResultSuccess
	}
	return domain.ScanResult{
		ID:         r.ID,
		Timestamp:  r.Timestamp.Time,
		ModelID:    int64(r.ModelID),
		ModelName:  r.ModelName,
		Author:     r.Author,
		FoundItems: r.FoundItems,
		Status:     status,
	}
}

// MapResults converts wire results, preserving backend order (oldest first)
func MapResults(rs []ScanResultDTO) []domain.ScanResult {
	results := make([]domain.ScanResult, 0, len(rs))
	for _, r := range rs {
		results = append(results, MapResult(r))
	}
	return results
}

// MapState converts a wire status string. Unknown values are kept verbatim
// so callers can treat them as non-terminal.
func MapState(s string) domain.ScanState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "idle":
		return domain.ScanStateIdle
	case "scanning":
		return domain.ScanStateScanning
	case "error":
		return domain.ScanStateError
	default:
		return domain.ScanState(strings.ToLower(s))
	}
}

// MapStatus converts the scan-status payload to a snapshot
func MapStatus(resp StatusResponse) domain.StatusSnapshot {
	snap := domain.StatusSnapshot{
		Status:  MapState(resp.Status),
		Results: MapResults(resp.Results),
	}
	if resp.LastScan != nil && !resp.LastScan.IsZero() {
		t := resp.LastScan.Time
		snap.LastScan = &t
	}
	if resp.CurrentModel != nil {
		snap.CurrentModel = int64(*resp.CurrentModel)
	}
	if resp.Result != nil {
		r := MapResult(*resp.Result)
		snap.Result = &r
	}
	if resp.Error != nil {
		snap.Error = *resp.Error
	}
	return snap
}

// MapStartOutcome converts the start-scan payload
func MapStartOutcome(resp StartScanResponse) domain.StartOutcome {
	out := domain.StartOutcome{
		Message: resp.Message,
		Error:   resp.Error,
	}
	if resp.Status != "" {
		out.Status = MapState(resp.Status)
	}
	if resp.ModelID != nil {
		out.ModelID = int64(*resp.ModelID)
	}
	return out
}

// MapDirectOutcome converts the synchronous scan payload
func MapDirectOutcome(resp DirectScanResponse) domain.DirectOutcome {
	return domain.DirectOutcome{
		Success:   resp.Success,
		ModelID:   resp.ModelID,
		ModelName: resp.ModelName,
		Error:     resp.Error,
	}
}
