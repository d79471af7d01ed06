package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAICompat calls any OpenAI-compatible /chat/completions endpoint.
// BaseURL includes the version prefix, e.g. "http://localhost:8000/v1".
type OpenAICompat struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAICompat builds an OpenAI-compatible Generator.
// apiKey may be empty for local models that do not require authentication.
func NewOpenAICompat(baseURL, apiKey, model string, timeout time.Duration) *OpenAICompat {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OpenAICompat{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *OpenAICompat) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.model == "" {
		return "", fmt.Errorf("%w: openai-compat model required", ErrUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model:    g.model,
		Messages: messages(systemPrompt, userPrompt),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: openai-compat request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp openAIError
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("%w: openai-compat api error: %s", ErrUnavailable, errResp.Error.Message)
		}
		return "", fmt.Errorf("%w: openai-compat api error: %s", ErrUnavailable, resp.Status)
	}

	var chat openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("%w: openai-compat decode: %w", ErrUnavailable, err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from openai-compat api", ErrUnavailable)
	}

	text := strings.TrimSpace(chat.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty response from openai-compat api", ErrUnavailable)
	}
	return text, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type openAIResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func messages(systemPrompt, userPrompt string) []message {
	msgs := make([]message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, message{Role: "system", Content: systemPrompt})
	}
	return append(msgs, message{Role: "user", Content: userPrompt})
}
