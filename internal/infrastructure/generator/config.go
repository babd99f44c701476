package generator

import "fmt"

// Config holds connection settings for the generative text API.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("generator base URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("generator API key is required")
	}
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	return nil
}
