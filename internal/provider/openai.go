package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/talkbase/answerd/pkg/errors"
)

// OpenAIClient talks to an OpenAI-compatible API for embeddings and chat
// completions. The API key is checked per call, not at construction, so a
// missing key fails the first request that needs the provider rather than
// startup.
type OpenAIClient struct {
	baseURL        string
	apiKey         string
	embeddingModel string
	chatModel      string
	httpClient     *http.Client
}

// OpenAIConfig configures the provider client.
type OpenAIConfig struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// NewOpenAIClient creates a provider client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed computes an embedding for the given text. A single attempt is made;
// no retries.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, errors.NewUpstreamError(errors.ReasonProviderMissingConfig,
			"embedding provider API key is not configured", "")
	}

	body, err := c.post(ctx, "/embeddings", embeddingRequest{
		Input: text,
		Model: c.embeddingModel,
	}, "embedding request")
	if err != nil {
		return nil, err
	}

	var resp embeddingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewUpstreamError(errors.ReasonProviderUnavailable,
			"embedding response could not be parsed", excerpt(body))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.NewUpstreamError(errors.ReasonProviderUnavailable,
			"embedding response contained no vector", excerpt(body))
	}

	return resp.Data[0].Embedding, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete generates a chat completion for a system/user prompt pair.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", errors.NewUpstreamError(errors.ReasonProviderMissingConfig,
			"generation provider API key is not configured", "")
	}

	body, err := c.post(ctx, "/chat/completions", chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}, "completion request")
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.NewUpstreamError(errors.ReasonProviderUnavailable,
			"completion response could not be parsed", excerpt(body))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.NewUpstreamError(errors.ReasonProviderUnavailable,
			"completion response contained no message", excerpt(body))
	}

	return resp.Choices[0].Message.Content, nil
}

// post sends a JSON request and returns the raw success body. Non-2xx
// responses become upstream errors carrying the provider's payload.
func (c *OpenAIClient) post(ctx context.Context, path string, payload any, what string) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", what, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", what, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamError(errors.ReasonProviderUnavailable,
			what+" failed", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewUpstreamError(errors.ReasonProviderUnavailable,
			what+": read response", err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstreamError(errors.ReasonProviderUnavailable,
			fmt.Sprintf("%s returned status %d", what, resp.StatusCode), excerpt(body))
	}

	return body, nil
}

const maxExcerptLen = 512

// excerpt bounds a provider payload for inclusion in error detail.
func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxExcerptLen {
		return s[:maxExcerptLen] + "..."
	}
	return s
}
