package scan_test

import (
	"context"
	"testing"
	"time"

	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/adapter/source/scraper"
	"github.com/mmcdole/lorascan/internal/backendtest"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/scan"
)

func newService(t *testing.T) (*scan.Service, *backendtest.Fake) {
	t.Helper()
	fake := backendtest.New(t)
	client := scraper.NewClient(fake.URL, 2*time.Second, adapter.NullLogger())
	return scan.NewService(client, client, adapter.NullLogger()), fake
}

func TestSubmit_ValidIDStartsScanning(t *testing.T) {
	svc, fake := newService(t)
	m := scan.NewMachine()

	res := svc.Submit(context.Background(), domain.InputByID, "314")
	if res.Outcome != scan.OutcomeStarted {
		t.Fatalf("outcome = %v, message = %q", res.Outcome, res.Message)
	}
	if !res.ClearsInput() {
		t.Error("started scan should clear the input")
	}

	gen, poll := res.ApplyTo(m)
	if !poll || !m.Current(gen) {
		t.Fatal("expected polling to start")
	}
	if m.State() != domain.ScanStateScanning {
		t.Errorf("state = %q", m.State())
	}
	if fake.Calls("/check-model") != 1 || fake.Calls("/start-scan") != 1 {
		t.Errorf("calls: check=%d start=%d", fake.Calls("/check-model"), fake.Calls("/start-scan"))
	}
}

func TestSubmit_EmptyIDMakesNoRequest(t *testing.T) {
	svc, fake := newService(t)
	m := scan.NewMachine()

	res := svc.Submit(context.Background(), domain.InputByID, "")
	if res.Outcome != scan.OutcomeInvalid || res.Message != "Please enter a model ID" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, poll := res.ApplyTo(m); poll || m.State() != domain.ScanStateIdle {
		t.Error("invalid input must not change state")
	}
	if n := fake.Calls("/check-model") + fake.Calls("/start-scan"); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestSubmit_BadURL(t *testing.T) {
	svc, fake := newService(t)

	res := svc.Submit(context.Background(), domain.InputByURL, "https://civitai.com/user/someone")
	if res.Message != "Invalid CivitAI URL format" {
		t.Fatalf("message = %q", res.Message)
	}
	if fake.Calls("/check-model") != 0 {
		t.Error("bad URL must not reach the backend")
	}
}

func TestSubmit_ExistingModelSkipsStartScan(t *testing.T) {
	svc, fake := newService(t)
	fake.SetExisting(55, "Model was recently scanned")
	m := scan.NewMachine()

	res := svc.Submit(context.Background(), domain.InputByURL, "https://civitai.com/models/55/foo")
	if res.Outcome != scan.OutcomeExists || res.Message != "Model was recently scanned" {
		t.Fatalf("unexpected result: %+v", res)
	}
	res.ApplyTo(m)
	if m.State() != domain.ScanStateIdle {
		t.Errorf("state = %q", m.State())
	}
	if fake.Calls("/start-scan") != 0 {
		t.Error("start-scan must not be called for an existing model")
	}
}

func TestSubmit_PayloadErrorSetsErrorState(t *testing.T) {
	svc, fake := newService(t)
	fake.SetStartError("AIRTABLE_TOKEN missing")
	m := scan.NewMachine()

	res := svc.Submit(context.Background(), domain.InputByID, "9")
	if res.Outcome != scan.OutcomeRejected || res.Message != "AIRTABLE_TOKEN missing" {
		t.Fatalf("unexpected result: %+v", res)
	}
	res.ApplyTo(m)
	if m.State() != domain.ScanStateError || m.Error() != "AIRTABLE_TOKEN missing" {
		t.Errorf("state=%q error=%q", m.State(), m.Error())
	}
}

func TestSubmit_CheckErrorStopsBeforeStartScan(t *testing.T) {
	svc, fake := newService(t)
	fake.SetCheckError("database locked")
	m := scan.NewMachine()

	res := svc.Submit(context.Background(), domain.InputByID, "9")
	if res.Outcome != scan.OutcomeRejected || res.Message != "database locked" {
		t.Fatalf("unexpected result: %+v", res)
	}
	res.ApplyTo(m)
	if m.State() != domain.ScanStateError || m.Error() != "database locked" {
		t.Errorf("state=%q error=%q", m.State(), m.Error())
	}
	if fake.Calls("/start-scan") != 0 {
		t.Error("start-scan must not be called after a check-model error")
	}
}

func TestSubmit_BackendDown(t *testing.T) {
	svc, fake := newService(t)
	fake.Close()

	res := svc.Submit(context.Background(), domain.InputByID, "9")
	if res.Outcome != scan.OutcomeFailed || res.Message != scan.MsgStartFailed {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSubmitDirect(t *testing.T) {
	svc, fake := newService(t)
	fake.SetDirect("2", scraper.DirectScanResponse{Error: "duplicate"})
	fake.SetDirect("3", scraper.DirectScanResponse{Error: "not_found"})
	fake.SetDirect("4", scraper.DirectScanResponse{Error: "rate limited"})
	fake.SetDirect("5", scraper.DirectScanResponse{Success: true, ModelID: "5", ModelName: "Pastel"})

	tests := []struct {
		raw         string
		outcome     scan.Outcome
		message     string
		dismissable bool
	}{
		{"2", scan.OutcomeDuplicate, scan.MsgDuplicate, true},
		{"3", scan.OutcomeNotFound, scan.MsgNotFound, true},
		{"4", scan.OutcomeRejected, "rate limited", false},
		{"5", scan.OutcomeScanned, "Scanned Pastel (5)", false},
	}
	for _, tt := range tests {
		res := svc.SubmitDirect(context.Background(), domain.InputByID, tt.raw)
		if res.Outcome != tt.outcome || res.Message != tt.message || res.Dismissable() != tt.dismissable {
			t.Errorf("SubmitDirect(%s) = %+v", tt.raw, res)
		}
	}
	if fake.Calls("/start-scan") != 0 {
		t.Error("direct mode must not use start-scan")
	}
}

func TestClearStatus(t *testing.T) {
	svc, fake := newService(t)
	fake.SetStatus("error", nil)

	if err := svc.ClearStatus(context.Background()); err != nil {
		t.Fatalf("ClearStatus: %v", err)
	}
	snap, err := svc.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if snap.Status != domain.ScanStateIdle {
		t.Errorf("status = %q", snap.Status)
	}
}
