package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultDeepSeekURL   = "https://api.deepseek.com/chat/completions"
	DefaultDeepSeekModel = "deepseek-chat"
)

// DeepSeekProvider calls an OpenAI-compatible chat completions endpoint.
type DeepSeekProvider struct {
	BaseURL string // full completions URL; DefaultDeepSeekURL when empty
	Model   string
	Client  *http.Client
}

var _ Provider = (*DeepSeekProvider)(nil)

// DeepSeekRequest is the chat completions request body.
type DeepSeekRequest struct {
	Messages       []Message      `json:"messages"`
	Model          string         `json:"model"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat ResponseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
	Temperature    float64        `json:"temperature"`
	TopP           float64        `json:"top_p"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type DeepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

func (p *DeepSeekProvider) Name() string { return "deepseek" }

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, req Request) (string, error) {
	if err := checkKey(p.Name(), req.APIKey); err != nil {
		return "", err
	}

	var messages []Message
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Content: req.SystemPrompt, Role: "system"})
	}
	messages = append(messages, Message{Content: req.Prompt, Role: "user"})

	body := DeepSeekRequest{
		Messages:       messages,
		Model:          firstNonEmpty(req.Model, p.Model, DefaultDeepSeekModel),
		MaxTokens:      4096,
		ResponseFormat: ResponseFormat{Type: "text"},
		Temperature:    1.0,
		TopP:           1.0,
	}
	if req.Temperature != nil {
		body.Temperature = float64(*req.Temperature)
	}

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal deepseek request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, firstNonEmpty(p.BaseURL, DefaultDeepSeekURL), bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("create deepseek request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	res, err := httpClient(p.Client).Do(httpReq)
	if err != nil {
		return "", &APIError{Provider: p.Name(), Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: res.StatusCode, Message: "reading response body", Err: err}
	}

	var response DeepSeekResponse
	decodeErr := json.Unmarshal(raw, &response)

	if res.StatusCode != http.StatusOK {
		apiErr := &APIError{Provider: p.Name(), StatusCode: res.StatusCode, Message: strings.TrimSpace(string(raw))}
		if decodeErr == nil && response.Error != nil {
			apiErr.Message = response.Error.Message
			apiErr.Status = response.Error.Type
		}
		return "", apiErr
	}
	if decodeErr != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: res.StatusCode, Message: "undecodable response", Err: decodeErr}
	}
	if len(response.Choices) == 0 {
		return "", &APIError{Provider: p.Name(), StatusCode: res.StatusCode, Message: "response has no choices"}
	}
	return response.Choices[0].Message.Content, nil
}

// DefaultTimeout bounds one HTTP round trip to a provider.
const DefaultTimeout = 120 * time.Second

var defaultClient = &http.Client{Timeout: DefaultTimeout}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return defaultClient
}
