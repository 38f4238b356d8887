// Package openai adapts OpenAI-compatible endpoints (embeddings, chat and
// vision) to the capability interfaces of the core.
package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

func newClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// apiError turns a client error into a readable message wrapped with sentinel.
func apiError(op string, err, sentinel error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := string(reqErr.Body)
		if d := detail(reqErr.Body); d != "" {
			body = d
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, body, sentinel)
	}

	var e *openai.APIError
	if errors.As(err, &e) {
		return fmt.Errorf("%s API error %d: %s: %w", op, e.HTTPStatusCode, e.Message, sentinel)
	}

	return fmt.Errorf("%s request failed: %v: %w", op, err, sentinel)
}

// detail reads the "detail" field some gateways return instead of "error".
func detail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
