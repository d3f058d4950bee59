// Package llm sends prompts to hosted text-generation services.
package llm

import (
	"context"
	"strings"
)

// Request is one text-generation call. Model and APIKey come from
// configuration, never from the prompt.
type Request struct {
	Model        string
	APIKey       string
	Prompt       string
	SystemPrompt string
	Temperature  *float32 // nil uses the provider default
}

// Provider is the interface for all LLM providers.
type Provider interface {
	// Name is the configuration key of the provider ("gemini", "deepseek", ...).
	Name() string
	// GenerateResponse performs exactly one remote call and returns the
	// generated text verbatim.
	GenerateResponse(ctx context.Context, req Request) (string, error)
}

// Float32 returns a pointer to v, for Request.Temperature.
func Float32(v float32) *float32 { return &v }

func checkKey(provider, key string) error {
	if strings.TrimSpace(key) == "" {
		return &MissingKeyError{Provider: provider}
	}
	return nil
}
