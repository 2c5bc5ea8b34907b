package config

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultSourceURL is the Montpellier Mediterranee Metropole open data portal.
const DefaultSourceURL = "https://portail-api-data.montpellier3m.fr"

// SourceConfig defines where station data is fetched from.
type SourceConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Attribute      string `json:"attribute"`
}

// SetDefaults applies sane defaults.
func (c *SourceConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultSourceURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if c.Attribute == "" {
		c.Attribute = "availableBikeNumber"
	}
}

// Timeout returns the HTTP timeout.
func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks mandatory fields.
func (c SourceConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", c.BaseURL)
	}
	return nil
}
