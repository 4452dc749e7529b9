package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrBackendOffline indicates the scraper backend is unreachable
	ErrBackendOffline = errors.New("scraper backend is unreachable")

	// ErrUnexpectedStatus indicates the backend answered with a non-JSON error
	ErrUnexpectedStatus = errors.New("unexpected response from scraper backend")

	// ErrDuplicateModel indicates the model was already scanned
	ErrDuplicateModel = errors.New("model already scanned")

	// ErrModelNotFound indicates the model does not exist upstream
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyInput indicates nothing was typed in
	ErrEmptyInput = errors.New("empty model reference")

	// ErrInvalidURL indicates the URL has no /models/<digits> segment
	ErrInvalidURL = errors.New("invalid model URL")

	// ErrInvalidID indicates the model ID is not numeric
	ErrInvalidID = errors.New("invalid model ID")
)

// UserError pairs an error with the exact message shown to the user
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError creates a UserError
func NewUserError(err error, message string) *UserError {
	return &UserError{Err: err, Message: message}
}

// UserMessage returns the user-facing text for err, or fallback when err
// carries none
func UserMessage(err error, fallback string) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return fallback
}
