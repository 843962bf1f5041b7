// Package upstream describes failures of the remote generation services.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedPayload indicates a 2xx response whose body could not be decoded.
var ErrMalformedPayload = errors.New("malformed response payload")

// Error is a failed call to a generation provider.
// StatusCode is zero when no HTTP response was received.
type Error struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Detail is the short form shown to users: the status code when one is known,
// otherwise the underlying message.
func (e *Error) Detail() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// maxBodyRunes caps how much of an error body is kept.
const maxBodyRunes = 200

// StatusError builds an Error from a non-2xx response body.
func StatusError(provider string, status int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	if r := []rune(msg); len(r) > maxBodyRunes {
		msg = string(r[:maxBodyRunes]) + "..."
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Provider: provider, StatusCode: status, Err: errors.New(msg)}
}

// Wrap attaches provider to err unless err already carries an Error.
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return err
	}
	return &Error{Provider: provider, Err: err}
}

// Malformed reports an undecodable response body.
func Malformed(provider string, err error) *Error {
	return &Error{Provider: provider, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
}

// Detail returns the user-facing detail of any error.
func Detail(err error) string {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Detail()
	}
	return err.Error()
}

var authPatterns = []string{
	"invalid api key",
	"api key not valid",
	"api_key_invalid",
	"incorrect api key",
	"authentication failed",
	"unauthorized",
	"permission denied",
	"missing api key",
}

// IsAuthError reports whether err looks like a rejected or missing credential.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var ue *Error
	if errors.As(err, &ue) && (ue.StatusCode == http.StatusUnauthorized || ue.StatusCode == http.StatusForbidden) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range authPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
