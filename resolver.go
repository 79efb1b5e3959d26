package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FieldResolver produces the text for one missing field of one entry.
// Implementations wrap a language-model backend; calls are network-bound and
// may fail transiently, so callers wrap them in withRetry.
type FieldResolver interface {
	Name() string
	Resolve(ctx context.Context, entry *Entry, field FieldKind) (string, error)
}

// Recognized backend names.
const (
	BackendGPT    = "gpt"
	BackendOllama = "ollama"
)

// ErrEmptyValue is returned when the model replied but produced no usable
// field value. It counts as a transient failure and triggers a retry.
var ErrEmptyValue = errors.New("model returned an empty value")

// NewFieldResolver creates the resolver selected by the configuration.
func NewFieldResolver(cfg *Config) (FieldResolver, error) {
	switch cfg.Settings.Backend {
	case BackendGPT:
		return NewOpenAIResolver(cfg)
	case BackendOllama:
		return NewOllamaResolver(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q (expected %q or %q)", cfg.Settings.Backend, BackendGPT, BackendOllama)
	}
}

// fieldDescriptions guide the model toward the expected content of each field.
var fieldDescriptions = map[FieldKind]string{
	FieldPartOfSpeech: "The grammatical category of the word (e.g., noun, verb, adjective).",
	FieldDefinition:   "A clear and concise explanation of the word's meaning in its most common usage.",
	FieldExample:      "A grammatically correct sentence demonstrating the word's usage in context. The sentence must use the original word itself, not a synonym or related term.",
	FieldEtymology:    "A historical account of the word's origin, including its root languages and how its meaning has evolved over time.",
}

// buildFieldPrompt builds the user prompt for one (entry, field) request.
// Already-known fields of the entry are passed along as context.
func buildFieldPrompt(e *Entry, field FieldKind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %s\n", e.Word)
	fmt.Fprintf(&b, "Requested field: %s\n", field)
	fmt.Fprintf(&b, "Field description: %s\n", fieldDescriptions[field])

	var known []string
	for _, kind := range enrichableFields {
		if kind == field {
			continue
		}
		if value := e.Field(kind); !fieldMissing(value) {
			known = append(known, fmt.Sprintf("%s: %s", kind, value))
		}
	}
	if len(known) > 0 {
		fmt.Fprintf(&b, "Known fields:\n%s\n", strings.Join(known, "\n"))
	}

	b.WriteString(`Respond with only a JSON object of the form {"value": "<text>"}.`)
	return b.String()
}

type valuePayload struct {
	Value string `json:"value"`
}

// parseFieldValue extracts the field text from a model reply. Replies are
// expected to be a JSON object {"value": "..."} but may arrive wrapped in
// markdown code fences despite JSON mode.
func parseFieldValue(raw string) (string, error) {
	cleaned := cleanJSONFence(raw)

	var payload valuePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return "", fmt.Errorf("parsing model reply as JSON: %w (reply: %s)", err, truncate(raw, 200))
	}

	value := strings.TrimSpace(payload.Value)
	if fieldMissing(value) {
		return "", ErrEmptyValue
	}
	return value, nil
}

// cleanJSONFence strips markdown code fences some models add around JSON.
func cleanJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
