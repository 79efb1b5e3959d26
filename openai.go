package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIResolver resolves fields through the OpenAI chat completions API.
type OpenAIResolver struct {
	apiKey       string
	model        string
	baseURL      string
	temperature  float64
	systemPrompt string
	client       *http.Client
}

// NewOpenAIResolver creates the gpt backend resolver.
func NewOpenAIResolver(cfg *Config) (*OpenAIResolver, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	baseURL := cfg.Settings.Backends.GPT.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAIResolver{
		apiKey:       cfg.APIKey,
		model:        cfg.Settings.Backends.GPT.Model,
		baseURL:      baseURL,
		temperature:  cfg.Settings.Backends.GPT.Temperature,
		systemPrompt: cfg.GetSystemPrompt(),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Name identifies the backend in logs and progress output.
func (r *OpenAIResolver) Name() string {
	return BackendGPT
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Resolve asks the model for one field of one entry.
func (r *OpenAIResolver) Resolve(ctx context.Context, entry *Entry, field FieldKind) (string, error) {
	payload := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: r.systemPrompt},
			{Role: "user", Content: buildFieldPrompt(entry, field)},
		},
		Temperature:    r.temperature,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("openai rate limit hit (status %d)", resp.StatusCode)
		}
		return "", fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decoding openai response: %w", err)
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai response missing content")
	}

	return parseFieldValue(envelope.Choices[0].Message.Content)
}
