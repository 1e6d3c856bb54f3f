package jellyfin

import (
	"errors"
	"fmt"
	"net/http"

	domainerrors "github.com/tagrs/movietagger/internal/errors"
)

// Sentinel errors for Jellyfin API operations.
var (
	ErrInvalidPath       = errors.New("jellyfin: path must start with \"/\"")
	ErrUnauthorized      = errors.New("jellyfin: api key rejected")
	ErrNotFound          = errors.New("jellyfin: not found")
	ErrRateLimited       = errors.New("jellyfin: rate limited by server")
	ErrServer            = errors.New("jellyfin: server error")
	ErrUnexpectedStatus  = errors.New("jellyfin: unexpected status")
	ErrMalformedResponse = errors.New("jellyfin: malformed response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op     string // "users", "mediaFolders", "setPolicy"
	UserID string // if applicable
	Status int    // HTTP status, zero when no response was received
	Body   string // response body excerpt for non-2xx replies
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("jellyfin %s", e.Op)
	if e.UserID != "" {
		msg += fmt.Sprintf(" [user %s]", e.UserID)
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	msg += fmt.Sprintf(": %v", e.Err)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError attaches operation context and classifies the failure for the
// HTTP layer: a malformed request path is the caller's fault, anything else
// is an upstream failure.
func wrapError(op, userID string, err error) error {
	var jerr *Error
	if !errors.As(err, &jerr) {
		jerr = &Error{Err: err}
	}
	jerr.Op = op
	jerr.UserID = userID

	if errors.Is(err, ErrInvalidPath) {
		return domainerrors.Wrap(jerr, domainerrors.CodeInvalidInput, "invalid jellyfin request")
	}
	return domainerrors.Wrap(jerr, domainerrors.CodeUpstream, "jellyfin request failed")
}

// statusError maps a non-2xx response to an *Error.
func statusError(status int, body []byte) *Error {
	var sentinel error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case status >= http.StatusInternalServerError:
		sentinel = ErrServer
	default:
		sentinel = ErrUnexpectedStatus
	}
	return &Error{Status: status, Body: excerpt(body), Err: sentinel}
}

// excerpt trims a response body for inclusion in error messages.
func excerpt(body []byte) string {
	const maxLen = 512
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
