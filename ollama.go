package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaResolver resolves fields through a local Ollama daemon.
type OllamaResolver struct {
	client       *api.Client
	model        string
	systemPrompt string
}

// NewOllamaResolver creates the ollama backend resolver. The daemon must be
// reachable at construction time; an unreachable daemon is a configuration
// error, not a per-field failure.
func NewOllamaResolver(cfg *Config) (*OllamaResolver, error) {
	var client *api.Client
	if host := cfg.Settings.Backends.Ollama.Host; host != "" {
		base, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		client = api.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	r := &OllamaResolver{
		client:       client,
		model:        cfg.Settings.Backends.Ollama.Model,
		systemPrompt: cfg.GetSystemPrompt(),
	}

	if !r.Available(context.Background()) {
		return nil, fmt.Errorf("ollama service not available")
	}
	return r, nil
}

// Name identifies the backend in logs and progress output.
func (r *OllamaResolver) Name() string {
	return BackendOllama
}

// Available checks if Ollama is running and reachable.
func (r *OllamaResolver) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// List models as a health check
	_, err := r.client.List(ctx)
	return err == nil
}

// Resolve asks the model for one field of one entry.
func (r *OllamaResolver) Resolve(ctx context.Context, entry *Entry, field FieldKind) (string, error) {
	req := &api.GenerateRequest{
		Model:  r.model,
		System: r.systemPrompt,
		Prompt: buildFieldPrompt(entry, field),
		Format: json.RawMessage(`"json"`), // Force JSON mode
		Stream: new(bool),                 // false
	}

	var respText string
	err := r.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		respText = resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	return parseFieldValue(respText)
}
