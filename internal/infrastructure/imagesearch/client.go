package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// IMAGE SEARCH CLIENT
// =====================================================

// Config holds connection settings for the image search API.
type Config struct {
	BaseURL  string
	APIKey   string
	EngineID string
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.googleapis.com/customsearch/v1"
	}
	if c.APIKey == "" {
		return fmt.Errorf("image search API key is required")
	}
	if c.EngineID == "" {
		return fmt.Errorf("image search engine ID is required")
	}
	return nil
}

// Client resolves a product identity to a public image URL through a custom
// search endpoint.
type Client struct {
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid image search config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// FindPrimaryImage returns the first image hit for the identity's search
// query. No hits is reported as an empty result, not an error.
func (c *Client) FindPrimaryImage(ctx context.Context, identity model.ProductIdentity) (string, error) {
	query := identity.SearchQuery()
	if query == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("key", c.config.APIKey)
	params.Set("cx", c.config.EngineID)
	params.Set("searchType", "image")
	params.Set("num", "1")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(parsed.Items) == 0 {
		return "", nil
	}

	return parsed.Items[0].Link, nil
}
