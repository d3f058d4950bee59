package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultQwenURL   = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"
	DefaultQwenModel = "qwen-max"
)

// QwenProvider calls the native DashScope text-generation API.
type QwenProvider struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

var _ Provider = (*QwenProvider)(nil)

func (p *QwenProvider) Name() string { return "qwen" }

func (p *QwenProvider) GenerateResponse(ctx context.Context, req Request) (string, error) {
	if err := checkKey(p.Name(), req.APIKey); err != nil {
		return "", err
	}

	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	parameters := map[string]interface{}{"result_format": "message"}
	if req.Temperature != nil {
		parameters["temperature"] = *req.Temperature
	}
	reqBody := map[string]interface{}{
		"model":      firstNonEmpty(req.Model, p.Model, DefaultQwenModel),
		"input":      map[string]interface{}{"messages": messages},
		"parameters": parameters,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal qwen request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, firstNonEmpty(p.BaseURL, DefaultQwenURL), bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := httpClient(p.Client).Do(httpReq)
	if err != nil {
		return "", &APIError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: "reading response body", Err: err}
	}

	// {"output": {"choices": [{"message": {"content": "..."}}]}} or
	// {"output": {"text": "..."}} on older endpoints.
	var result struct {
		Output struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
			Text string `json:"text"`
		} `json:"output"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode != http.StatusOK || result.Code != "" {
		apiErr := &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Status: result.Code, Message: result.Message}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return "", apiErr
	}
	if decodeErr != nil {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: "undecodable response", Err: decodeErr}
	}

	if len(result.Output.Choices) > 0 {
		return result.Output.Choices[0].Message.Content, nil
	}
	if result.Output.Text != "" {
		return result.Output.Text, nil
	}
	return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Message: "empty response"}
}
