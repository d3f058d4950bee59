package llm

import (
	"context"
	"errors"
	"strings"

	legacy "github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiLegacyProvider talks to Gemini through the older generative-ai-go SDK.
// Kept for deployments pinned to it; new setups should use GeminiProvider.
type GeminiLegacyProvider struct {
	Model string
}

var _ Provider = (*GeminiLegacyProvider)(nil)

func (p *GeminiLegacyProvider) Name() string { return "gemini_legacy" }

func (p *GeminiLegacyProvider) GenerateResponse(ctx context.Context, req Request) (string, error) {
	if err := checkKey(p.Name(), req.APIKey); err != nil {
		return "", err
	}

	client, err := legacy.NewClient(ctx, option.WithAPIKey(req.APIKey))
	if err != nil {
		return "", &APIError{Provider: p.Name(), Message: "failed to create client", Err: err}
	}
	defer client.Close()

	model := client.GenerativeModel(firstNonEmpty(req.Model, p.Model, DefaultGeminiModel))
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &legacy.Content{Parts: []legacy.Part{legacy.Text(req.SystemPrompt)}}
	}

	resp, err := model.GenerateContent(ctx, legacy.Text(req.Prompt))
	if err != nil {
		return "", p.wrap(err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(legacy.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		break
	}
	return sb.String(), nil
}

func (p *GeminiLegacyProvider) wrap(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &APIError{Provider: p.Name(), StatusCode: gErr.Code, Message: gErr.Message, Err: err}
	}
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		code := ae.HTTPCode()
		if code < 0 {
			code = 0
		}
		return &APIError{Provider: p.Name(), StatusCode: code, Status: ae.Reason(), Message: ae.Error(), Err: err}
	}
	return &APIError{Provider: p.Name(), Err: err}
}
