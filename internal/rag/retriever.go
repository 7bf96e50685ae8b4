package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dishdash/internal/config"

	"github.com/rs/zerolog"
)

// Document is a stored dish record returned by the vector index.
type Document struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Answer is the result of a retrieval-augmented query.
type Answer struct {
	Text    string
	Sources []Document
}

// Retriever answers a free-text query from the dish knowledge base. The
// query text is passed to the index unmodified; prompt shaping happens on
// the generation side only.
type Retriever interface {
	Query(ctx context.Context, text string) (*Answer, error)
}

// retriever implements Retriever: a top-k similarity search against the
// hosted vector index followed by a completion conditioned on the matches.
type retriever struct {
	httpClient *http.Client
	completion CompletionClient
	baseURL    string
	apiKey     string
	indexName  string
	topK       int
	logger     zerolog.Logger
}

// NewRetriever creates a retriever from configuration.
func NewRetriever(cfg config.RetrievalConfig, completion CompletionClient, logger zerolog.Logger) Retriever {
	return &retriever{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		completion: completion,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		indexName:  cfg.IndexName,
		topK:       cfg.TopK,
		logger:     logger.With().Str("component", "retriever").Logger(),
	}
}

type queryPayload struct {
	Index string `json:"index"`
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

type queryResponse struct {
	Matches []Document `json:"matches"`
}

func (r *retriever) Query(ctx context.Context, text string) (*Answer, error) {
	matches, err := r.search(ctx, text)
	if err != nil {
		return nil, err
	}

	contextParts := make([]string, len(matches))
	for i, m := range matches {
		contextParts[i] = m.Text
	}

	var prompt bytes.Buffer
	if err := ragPrompt.Execute(&prompt, ragPromptData{
		Context:  strings.Join(contextParts, "\n\n"),
		Question: text,
	}); err != nil {
		return nil, fmt.Errorf("failed to render query prompt: %w", err)
	}

	answer, err := r.completion.Complete(ctx, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	r.logger.Debug().
		Int("matches", len(matches)).
		Int("answer_len", len(answer)).
		Msg("query answered")

	return &Answer{Text: answer, Sources: matches}, nil
}

func (r *retriever) search(ctx context.Context, text string) ([]Document, error) {
	payload := queryPayload{
		Index: r.indexName,
		Query: text,
		TopK:  r.topK,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Api-Key", r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error().Err(err).Msg("search request failed")
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error().Int("status", resp.StatusCode).Msg("search returned non-200")
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return decoded.Matches, nil
}
