package narrative

import (
	"errors"
	"fmt"

	"balance_insight/pkg/core/llm"
)

// Kind classifies a narrative failure.
type Kind int

const (
	KindNone    Kind = iota // success
	KindAuth                // key missing or rejected
	KindAPI                 // remote call failed: quota, rate limit, transport
	KindUnknown             // anything else
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindAuth:
		return "auth_error"
	case KindAPI:
		return "api_error"
	default:
		return "unknown_error"
	}
}

// MarshalText makes Kind render as its name in JSON.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Classify maps a provider error to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return KindAuth
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Unauthorized() {
			return KindAuth
		}
		return KindAPI
	}
	return KindUnknown
}

// Message is the user-facing text for a failure. Each kind has a distinct
// wording so the UI can tell them apart without inspecting Kind.
func Message(kind Kind, err error) string {
	switch kind {
	case KindNone:
		return ""
	case KindAuth:
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return "Error: API key not found. Configure GEMINI_API_KEY (or the key of the active provider) and try again."
		}
		return fmt.Sprintf("Error: the API key was rejected by the text-generation service. Check that it is valid. Details: %v", err)
	case KindAPI:
		return fmt.Sprintf("Error calling the text-generation API: check the API key or usage limits. Details: %v", err)
	default:
		return fmt.Sprintf("An unknown error occurred: %v", err)
	}
}
