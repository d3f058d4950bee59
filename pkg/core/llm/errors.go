package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingAPIKey is matched by every *MissingKeyError.
var ErrMissingAPIKey = errors.New("api key not configured")

// MissingKeyError is returned before any I/O when a provider has no key.
type MissingKeyError struct {
	Provider string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, ErrMissingAPIKey)
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingAPIKey }

// APIError is a failed remote call: a non-2xx response, a transport
// failure or an undecodable body. StatusCode is 0 when no response arrived.
type APIError struct {
	Provider   string
	StatusCode int
	Status     string // provider status or reason, e.g. "RESOURCE_EXHAUSTED"
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	b.WriteString(" api error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d", e.StatusCode)
		if e.Status != "" {
			b.WriteString(" " + e.Status)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	} else if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Unauthorized reports whether the service rejected the key itself.
func (e *APIError) Unauthorized() bool {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return true
	}
	switch strings.ToUpper(e.Status) {
	case "UNAUTHENTICATED", "PERMISSION_DENIED", "API_KEY_INVALID", "INVALIDAPIKEY":
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "api key not valid") || strings.Contains(msg, "invalid api key")
}

// RateLimited reports quota or rate-limit rejections.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || strings.EqualFold(e.Status, "RESOURCE_EXHAUSTED")
}
