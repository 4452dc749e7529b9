package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmcdole/lorascan/internal/domain"
)

// User-facing submission messages
const (
	MsgStartFailed = "Failed to start scan. Please try again."
	MsgDuplicate   = "This model has already been scanned."
	MsgNotFound    = "Model not found on CivitAI."
	MsgClearFailed = "Failed to clear scanner status"
	msgScannedFmt  = "Scanned %s (%s)"
	duplicateCode  = "duplicate"
	notFoundCode   = "not_found"
)

// Outcome classifies what a submission did
type Outcome int

const (
	OutcomeInvalid   Outcome = iota // input rejected locally, nothing sent
	OutcomeExists                   // check-model said the model is known
	OutcomeStarted                  // scan accepted, start polling
	OutcomeRejected                 // backend answered with an error payload
	OutcomeFailed                   // backend unreachable
	OutcomeScanned                  // synchronous scan finished
	OutcomeDuplicate                // synchronous scan refused as duplicate
	OutcomeNotFound                 // synchronous scan could not find the model
)

// SubmitResult is the result of one submission attempt
type SubmitResult struct {
	Outcome Outcome
	Ref     domain.ModelRef
	Message string
}

// Dismissable reports whether the message should auto-dismiss
func (r SubmitResult) Dismissable() bool {
	return r.Outcome == OutcomeDuplicate || r.Outcome == OutcomeNotFound
}

// ClearsInput reports whether the input field should be emptied
func (r SubmitResult) ClearsInput() bool {
	return r.Outcome == OutcomeStarted || r.Outcome == OutcomeScanned
}

// ApplyTo drives the status machine. Returns the poll generation and true
// when polling must start.
func (r SubmitResult) ApplyTo(m *Machine) (uint64, bool) {
	switch r.Outcome {
	case OutcomeStarted:
		return m.Begin(r.Ref.ID), true
	case OutcomeRejected, OutcomeFailed:
		m.Reject(r.Message)
	}
	return 0, false
}

// Service submits scans and reads scanner status
type Service struct {
	repo   domain.ScanRepository
	status domain.StatusRepository
	logger *slog.Logger
}

// NewService creates a new scan service
func NewService(repo domain.ScanRepository, status domain.StatusRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, status: status, logger: logger}
}

// Submit validates input, checks the model and starts an asynchronous scan
func (s *Service) Submit(ctx context.Context, method domain.InputMethod, raw string) SubmitResult {
	ref, err := ParseModelRef(method, raw)
	if err != nil {
		return SubmitResult{Outcome: OutcomeInvalid, Message: domain.UserMessage(err, MsgInvalidID)}
	}

	check, err := s.repo.CheckModel(ctx, ref.ID)
	if err != nil {
		return s.failure(ref, "check model", err)
	}
	if check.Exists {
		s.logger.Info("model already known", "modelID", ref.ID, "message", check.Message)
		return SubmitResult{Outcome: OutcomeExists, Ref: ref, Message: check.Message}
	}

	out, err := s.repo.StartScan(ctx, ref.ID)
	if err != nil {
		return s.failure(ref, "start scan", err)
	}
	if out.Error != "" {
		s.logger.Warn("scan rejected", "modelID", ref.ID, "error", out.Error)
		return SubmitResult{Outcome: OutcomeRejected, Ref: ref, Message: out.Error}
	}

	s.logger.Info("scan started", "modelID", ref.ID, "message", out.Message)
	return SubmitResult{Outcome: OutcomeStarted, Ref: ref}
}

// SubmitDirect validates input and runs the synchronous scan endpoint
func (s *Service) SubmitDirect(ctx context.Context, method domain.InputMethod, raw string) SubmitResult {
	ref, err := ParseModelRef(method, raw)
	if err != nil {
		return SubmitResult{Outcome: OutcomeInvalid, Message: domain.UserMessage(err, MsgInvalidID)}
	}

	out, err := s.repo.ScanDirect(ctx, ref.String())
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		return SubmitResult{Outcome: OutcomeNotFound, Ref: ref, Message: MsgNotFound}
	case err != nil:
		return s.failure(ref, "direct scan", err)
	}

	switch out.Error {
	case "":
	case duplicateCode:
		return SubmitResult{Outcome: OutcomeDuplicate, Ref: ref, Message: MsgDuplicate}
	case notFoundCode:
		return SubmitResult{Outcome: OutcomeNotFound, Ref: ref, Message: MsgNotFound}
	default:
		return SubmitResult{Outcome: OutcomeRejected, Ref: ref, Message: out.Error}
	}

	if !out.Success {
		return SubmitResult{Outcome: OutcomeRejected, Ref: ref, Message: MsgStartFailed}
	}

	id := out.ModelID
	if id == "" {
		id = ref.String()
	}
	name := out.ModelName
	if name == "" {
		name = "Model " + id
	}
	s.logger.Info("direct scan finished", "modelID", id, "modelName", name)
	return SubmitResult{Outcome: OutcomeScanned, Ref: ref, Message: fmt.Sprintf(msgScannedFmt, name, id)}
}

func (s *Service) failure(ref domain.ModelRef, op string, err error) SubmitResult {
	s.logger.Error("submission failed", "op", op, "modelID", ref.ID, "error", err)
	var ue *domain.UserError
	if errors.As(err, &ue) {
		return SubmitResult{Outcome: OutcomeRejected, Ref: ref, Message: ue.Message}
	}
	return SubmitResult{Outcome: OutcomeFailed, Ref: ref, Message: MsgStartFailed}
}

// Poll fetches one status snapshot
func (s *Service) Poll(ctx context.Context) (domain.StatusSnapshot, error) {
	snap, err := s.status.ScanStatus(ctx, false)
	if err != nil {
		s.logger.Warn("status poll failed", "error", err)
		return domain.StatusSnapshot{}, err
	}
	s.logger.Debug("status polled", "status", snap.Status, "currentModel", snap.CurrentModel)
	return snap, nil
}

// ClearStatus resets the backend scanner
func (s *Service) ClearStatus(ctx context.Context) error {
	if err := s.repo.ClearStatus(ctx); err != nil {
		s.logger.Error("failed to clear status", "error", err)
		return domain.NewUserError(err, MsgClearFailed)
	}
	s.logger.Info("scanner status cleared")
	return nil
}
