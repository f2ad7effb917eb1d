// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Mihir205/Challenge-1b/internal/httputil"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

// OpenAI is an embeddings client for OpenAI-compatible APIs, including
// Ollama. Rate-limited and transient server errors are retried with
// exponential backoff.
type OpenAI struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	client     *http.Client
}

// NewOpenAI creates an embeddings client from config. The API key may
// be empty for endpoints that do not require one (e.g. a local Ollama).
func NewOpenAI(cfg types.EmbeddingConfig, apiKey string) *OpenAI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

// Name returns the identifier of this embedder implementation.
func (o *OpenAI) Name() string { return "openai:" + o.model }

// embeddingRequest is the request body for the embeddings endpoint.
// Prompt mirrors Input so Ollama-native endpoints accept the same body.
type embeddingRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// Embed requests an embedding vector for the given text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: o.model, Input: text, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("encoding embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, o.client, req, o.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("embeddings API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned HTTP %d", resp.StatusCode)
	}

	// OpenAI-compatible shape first, then the Ollama-native one.
	var payload struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing embeddings response: %w", err)
	}
	if len(payload.Data) > 0 && len(payload.Data[0].Embedding) > 0 {
		return payload.Data[0].Embedding, nil
	}
	if len(payload.Embedding) > 0 {
		return payload.Embedding, nil
	}
	return nil, fmt.Errorf("embeddings response contained no vector")
}
