package ledger

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotFound matches a StatusError with a 404 status.
var ErrNotFound = errors.New("ledger: not found")

// StatusError is returned when the ledger answers with a non-2xx status.
// Transport failures are never StatusErrors.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string // the "error" field of the body, if any
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ledger %s: status %d", e.Op, e.StatusCode)
}

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func newStatusError(op string, code int, body []byte) *StatusError {
	return &StatusError{
		Op:         op,
		StatusCode: code,
		Message:    errorMessage(body),
		Body:       body,
	}
}

// errorMessage pulls {"error": "..."} out of a body. Non-JSON bodies yield "".
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	res := gjson.GetBytes(body, "error")
	switch {
	case !res.Exists():
		return ""
	case res.Type == gjson.String:
		return strings.TrimSpace(res.String())
	case res.IsObject():
		if m := res.Get("message"); m.Exists() {
			return strings.TrimSpace(m.String())
		}
	}
	return strings.TrimSpace(res.Raw)
}

// Reason returns the ledger-reported message carried by err, or "".
func Reason(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

// IsStatus reports whether err is a ledger rejection rather than a transport failure.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
