package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// GENERATIVE TEXT CLIENT
// =====================================================

// Client talks to a Gemini-style generateContent endpoint. Responses are
// free text; callers own the shape contract and repair what comes back.
type Client struct {
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateSectionRevision asks for a rewrite of one document section that
// addresses the reviewer's comment. The original content is sent as JSON and
// the model is told to answer in the same shape.
func (c *Client) GenerateSectionRevision(ctx context.Context, sectionName string, originalContent interface{}, comment string) (interface{}, error) {
	original, err := json.Marshal(originalContent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode section content: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are revising the %q section of a product document.\n"+
			"Reviewer comment: %s\n"+
			"Current content (JSON): %s\n"+
			"Return ONLY the revised content as JSON with exactly the same structure "+
			"(same type, and for lists the same number of items).",
		sectionName, comment, original,
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var revised interface{}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &revised); err != nil {
		// Not JSON; hand back the raw text and let the caller repair it.
		return text, nil
	}
	return revised, nil
}

// GenerateDerivedDocument asks for a public-facing specsheet derived from the
// internal informational document.
func (c *Client) GenerateDerivedDocument(ctx context.Context, source model.DocumentTree) (model.DocumentTree, error) {
	encoded, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("failed to encode source document: %w", err)
	}

	prompt := fmt.Sprintf(
		"Derive a public product specsheet from this internal product sheet (JSON): %s\n"+
			"Return ONLY a JSON object with keys: header_info (object), "+
			"customer_friendly_description (string), key_features (array of strings), "+
			"technical_specifications (object), seo (object), categories (array of strings), "+
			"internal_web_keywords (array of strings).",
		encoded,
	)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &doc); err != nil {
		return nil, fmt.Errorf("generator returned non-JSON document: %w", err)
	}
	return model.DocumentTree(doc), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.config.BaseURL, "/"), c.config.Model, c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read generator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode generator response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generator returned no candidates")
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

// stripCodeFence removes a markdown ```json fence if the model wrapped its
// answer in one.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
