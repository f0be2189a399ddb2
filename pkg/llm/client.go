// Package llm builds extraction prompts, calls the external model endpoint,
// and repairs the possibly-malformed JSON it answers with. Every failure
// path degrades to the heuristic extractor; nothing here is fatal.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/manocha-aman/subscribe-any/models"
	"github.com/manocha-aman/subscribe-any/pkg/heuristics"
)

// StrongHeuristicConfidence is the bar above which an independent heuristic
// signal overrides a negative model verdict. A lazy or truncated model answer
// does not get to discard a near-certain page classification.
const StrongHeuristicConfidence = 0.9

// Client talks to a generative-model endpoint.
type Client struct {
	cfg        models.LLMConfig
	httpClient *http.Client
}

// NewClient creates a client for the configured endpoint. A zero API key is
// allowed; Available reports it and AnalyzeContent falls back accordingly.
func NewClient(cfg models.LLMConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Available reports whether an API credential is configured.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}

// AnalyzeContent extracts an order analysis from sanitized page content.
// Without a credential, on any transport error, or on an unusable response
// it delegates to the heuristic text extractor; errors never propagate.
// heuristicConfidence is the page classifier's score, used both for the
// override tie-break and to grade the fallback.
func (c *Client) AnalyzeContent(ctx context.Context, content models.PageContent, meta models.PageMeta, heuristicConfidence float64) (models.OrderAnalysis, error) {
	if !c.Available() {
		return heuristics.ExtractFromText(content.Text), nil
	}

	raw, err := c.generate(ctx, BuildPrompt(content, meta))
	if err != nil {
		return heuristics.ExtractFromText(content.Text), err
	}

	analysis := ParseResponse(raw)

	// Trust a very strong independent signal over a negative model answer.
	if !analysis.IsOrderConfirmation && heuristicConfidence >= StrongHeuristicConfidence {
		analysis.IsOrderConfirmation = true
		if analysis.Confidence < heuristicConfidence {
			analysis.Confidence = heuristicConfidence
		}
	}

	return analysis, nil
}

// generateRequest is the wire shape of a model call.
type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generate performs one model call and returns the first text field of the
// response envelope.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent", c.cfg.Endpoint, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}

	text := FirstTextField(body)
	if text == "" {
		return "", fmt.Errorf("no text field in response envelope")
	}
	return text, nil
}

// FirstTextField walks an arbitrary response envelope depth-first and returns
// the first string found under a "text" or "content" key. Provider envelopes
// differ; the normalization downstream does not care which shape answered.
func FirstTextField(body []byte) string {
	var envelope any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return findTextField(envelope)
}

func findTextField(node any) string {
	switch v := node.(type) {
	case map[string]any:
		for _, key := range []string{"text", "content"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		for _, key := range []string{"candidates", "content", "parts", "choices", "message", "output"} {
			if child, ok := v[key]; ok {
				if s := findTextField(child); s != "" {
					return s
				}
			}
		}
		for _, child := range v {
			if s := findTextField(child); s != "" {
				return s
			}
		}
	case []any:
		for _, child := range v {
			if s := findTextField(child); s != "" {
				return s
			}
		}
	}
	return ""
}
