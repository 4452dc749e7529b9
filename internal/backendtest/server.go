// Package backendtest provides an in-process fake of the LoRA Scraper
// backend for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mmcdole/lorascan/internal/adapter/source/scraper"
)

// Fake is a scriptable scraper backend. All fields are guarded by the
// methods below; tests mutate state through them only.
type Fake struct {
	*httptest.Server

	mu           sync.Mutex
	status       string
	lastScan     *time.Time
	currentModel int64
	results      []scraper.ScanResultDTO
	statusError  *string
	existing     map[int64]string
	checkError   string
	startError   string
	direct       map[string]scraper.DirectScanResponse
	failures     map[string]int
	calls        map[string]int
	startBodies  []scraper.StartScanRequest
	directBodies []scraper.DirectScanRequest
}

// New starts a fake backend that is closed when the test ends
func New(t testing.TB) *Fake {
	t.Helper()
	f := &Fake{
		status:   "idle",
		existing: make(map[int64]string),
		direct:   make(map[string]scraper.DirectScanResponse),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Close)
	return f
}

func (f *Fake) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(f.count)
	r.Get("/api/health", f.handleHealth)
	r.Get("/check-model", f.handleCheckModel)
	r.Post("/start-scan", f.handleStartScan)
	r.Get("/scan-status", f.handleScanStatus)
	r.Post("/scan", f.handleDirectScan)
	r.Post("/clear-status", f.handleClearStatus)
	return r
}

// count records calls and injects scripted failures
func (f *Fake) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		code, fail := f.failures[r.URL.Path]
		f.mu.Unlock()

		if fail {
			w.WriteHeader(code)
			_, _ = w.Write([]byte("internal failure"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *Fake) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (f *Fake) handleCheckModel(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("modelId")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No model ID provided"})
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	f.mu.Lock()
	msg, exists := f.existing[id]
	checkErr := f.checkError
	f.mu.Unlock()

	if checkErr != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": checkErr})
		return
	}

	if !exists {
		msg = "Model is new"
	}
	writeJSON(w, http.StatusOK, scraper.CheckModelResponse{Exists: exists, Message: msg})
}

func (f *Fake) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req scraper.StartScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, scraper.StartScanResponse{Error: err.Error(), Status: "error"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.startBodies = append(f.startBodies, req)

	if f.startError != "" {
		writeJSON(w, http.StatusInternalServerError, scraper.StartScanResponse{Error: f.startError, Status: "error"})
		return
	}
	if req.ModelID == 0 {
		writeJSON(w, http.StatusBadRequest, scraper.StartScanResponse{Error: "No model ID provided"})
		return
	}
	if f.status == "scanning" {
		current := scraper.FlexInt(f.currentModel)
		writeJSON(w, http.StatusOK, scraper.StartScanResponse{Message: "Scan already in progress", Status: "scanning", ModelID: &current})
		return
	}

	f.status = "scanning"
	f.currentModel = req.ModelID
	f.statusError = nil
	id := scraper.FlexInt(req.ModelID)
	writeJSON(w, http.StatusOK, scraper.StartScanResponse{Message: "Scan started", Status: "scanning", ModelID: &id})
}

func (f *Fake) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	resp := scraper.StatusResponse{
		Status: f.status,
		Error:  f.statusError,
	}
	if f.lastScan != nil {
		resp.LastScan = &scraper.Timestamp{Time: *f.lastScan}
	}
	if f.currentModel != 0 {
		current := scraper.FlexInt(f.currentModel)
		resp.CurrentModel = &current
	}
	if r.URL.Query().Get("latest") == "true" {
		if n := len(f.results); n > 0 {
			latest := f.results[n-1]
			resp.Result = &latest
		}
	} else {
		resp.Results = append([]scraper.ScanResultDTO(nil), f.results...)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *Fake) handleDirectScan(w http.ResponseWriter, r *http.Request) {
	var req scraper.DirectScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, scraper.DirectScanResponse{Error: err.Error()})
		return
	}

	f.mu.Lock()
	f.directBodies = append(f.directBodies, req)
	resp, ok := f.direct[req.ModelID]
	f.mu.Unlock()

	if !ok {
		resp = scraper.DirectScanResponse{Success: true, ModelID: req.ModelID, ModelName: "Model " + req.ModelID}
	}
	code := http.StatusOK
	if resp.Error == "not_found" {
		code = http.StatusNotFound
	}
	writeJSON(w, code, resp)
}

func (f *Fake) handleClearStatus(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	f.status = "idle"
	f.currentModel = 0
	f.statusError = nil
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status cleared"})
}

// SetExisting marks a model as already known with the given check message
func (f *Fake) SetExisting(modelID int64, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existing[modelID] = message
}

// SetCheckError makes check-model answer with an error payload
func (f *Fake) SetCheckError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkError = msg
}

// SetStartError makes start-scan answer with an error payload
func (f *Fake) SetStartError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startError = msg
}

// SetStatus forces the scanner status and error string
func (f *Fake) SetStatus(status string, errMsg *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.statusError = errMsg
}

// SetDirect scripts the POST /scan answer for a model ID
func (f *Fake) SetDirect(modelID string, resp scraper.DirectScanResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct[modelID] = resp
}

// Fail makes every request to path answer with a non-JSON error code
func (f *Fake) Fail(path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = code
}

// Finish completes the running scan and appends its result
func (f *Fake) Finish(result scraper.ScanResultDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if result.ID == "" {
		result.ID = strconv.Itoa(len(f.results) + 1)
	}
	if result.ModelID == 0 {
		result.ModelID = scraper.FlexInt(f.currentModel)
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = scraper.Timestamp{Time: time.Now()}
	}
	f.results = append(f.results, result)
	now := result.Timestamp.Time
	f.lastScan = &now
	f.status = "idle"
	f.currentModel = 0
}

// AddResult appends a result without touching the status
func (f *Fake) AddResult(result scraper.ScanResultDTO) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)
}

// Calls returns how many requests hit path
func (f *Fake) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// StartBodies returns every decoded start-scan body
func (f *Fake) StartBodies() []scraper.StartScanRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scraper.StartScanRequest(nil), f.startBodies...)
}

// DirectBodies returns every decoded POST /scan body
func (f *Fake) DirectBodies() []scraper.DirectScanRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scraper.DirectScanRequest(nil), f.directBodies...)
}
