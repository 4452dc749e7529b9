package scan

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcdole/lorascan/internal/domain"
)

// User-facing validation messages
const (
	MsgEmptyID    = "Please enter a model ID"
	MsgEmptyURL   = "Please enter a model URL"
	MsgInvalidURL = "Invalid CivitAI URL format"
	MsgInvalidID  = "Model ID must be a number"
)

var modelPathPattern = regexp.MustCompile(`/models/(\d+)`)

// ExtractModelID pulls the numeric ID out of a CivitAI model URL
func ExtractModelID(rawURL string) (string, bool) {
	m := modelPathPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseModelRef validates user input for the given method.
// Failures are *domain.UserError carrying the message to display.
func ParseModelRef(method domain.InputMethod, raw string) (domain.ModelRef, error) {
	raw = strings.TrimSpace(raw)

	digits := raw
	if method == domain.InputByURL {
		if raw == "" {
			return domain.ModelRef{}, domain.NewUserError(domain.ErrEmptyInput, MsgEmptyURL)
		}
		id, ok := ExtractModelID(raw)
		if !ok {
			return domain.ModelRef{}, domain.NewUserError(domain.ErrInvalidURL, MsgInvalidURL)
		}
		digits = id
	} else if raw == "" {
		return domain.ModelRef{}, domain.NewUserError(domain.ErrEmptyInput, MsgEmptyID)
	}

	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return domain.ModelRef{}, domain.NewUserError(domain.ErrInvalidID, MsgInvalidID)
	}
	return domain.ModelRef{ID: id, Raw: raw}, nil
}
