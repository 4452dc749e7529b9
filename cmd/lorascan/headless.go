package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/lorascan/internal/adapter"
	"github.com/mmcdole/lorascan/internal/domain"
	"github.com/mmcdole/lorascan/internal/results"
	"github.com/mmcdole/lorascan/internal/scan"
	"github.com/mmcdole/lorascan/internal/tui/components"
)

// runWatch submits ref and prints every status transition until the scan
// settles or ctx is cancelled
func runWatch(ctx context.Context, out io.Writer, scanSvc *scan.Service, resultsSvc *results.Service, cfg *adapter.Config, ref string) error {
	var res scan.SubmitResult
	if cfg.UI.SubmitMode == adapter.SubmitModeDirect {
		res = scanSvc.SubmitDirect(ctx, refMethod(ref), ref)
	} else {
		res = scanSvc.Submit(ctx, refMethod(ref), ref)
	}

	m := scan.NewMachine()
	res.ApplyTo(m)

	switch res.Outcome {
	case scan.OutcomeStarted:
		fmt.Fprintf(out, "scanning model %s\n", res.Ref)
	case scan.OutcomeScanned:
		fmt.Fprintln(out, res.Message)
		return printResults(ctx, out, resultsSvc)
	default:
		return errors.New(res.Message)
	}

	prev := m.State()
	err := scan.Watch(ctx, scanSvc, m, cfg.Polling.Interval, func(u scan.Update) {
		if u.State == prev {
			return
		}
		prev = u.State
		if u.Message != "" {
			fmt.Fprintf(out, "status: %s (%s)\n", u.State, u.Message)
		} else {
			fmt.Fprintf(out, "status: %s\n", u.State)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(out, "interrupted")
			return nil
		}
		return err
	}

	if m.State() == domain.ScanStateError {
		return errors.New(m.Error())
	}
	return printResults(ctx, out, resultsSvc)
}

// refMethod picks URL parsing for anything shaped like a URL or path, so
// a malformed URL reports a URL error rather than a numeric one
func refMethod(ref string) domain.InputMethod {
	if strings.Contains(ref, "/") {
		return domain.InputByURL
	}
	return domain.InputByID
}

// printResults fetches the results once and writes one line per result
func printResults(ctx context.Context, out io.Writer, svc *results.Service) error {
	page, err := svc.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", svc.ErrorText(), err)
	}

	fmt.Fprintln(out, svc.Title())
	if len(page.Results) == 0 {
		fmt.Fprintln(out, svc.EmptyText())
		return nil
	}
	for _, r := range page.Results {
		writeResult(out, r)
	}
	return nil
}

func writeResult(out io.Writer, r domain.ScanResult) {
	line := fmt.Sprintf("%s  %-7s  %s (model %d)  examples=%d",
		components.FormatTime(r.Timestamp), r.Status, r.DisplayName(), r.ModelID, r.FoundItems)
	if r.Author != "" {
		line += "  by " + r.Author
	}
	fmt.Fprintln(out, line)
}
