package config

import "fmt"

// ExportConfig selects the files written after a run.
type ExportConfig struct {
	Dir       string `json:"dir"`
	BaseName  string `json:"base_name"`
	CSV       bool   `json:"csv"`
	JSON      bool   `json:"json"`
	Report    bool   `json:"report"`
	Dashboard bool   `json:"dashboard"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.BaseName == "" {
		c.BaseName = "velomagg_analysis"
	}
}

// Enabled reports whether any file is written.
func (c ExportConfig) Enabled() bool { return c.CSV || c.JSON || c.Report || c.Dashboard }

// Validate checks mandatory fields.
func (c ExportConfig) Validate() error {
	if c.Enabled() && c.BaseName == "" {
		return fmt.Errorf("base_name is required")
	}
	return nil
}

// APIConfig configures the read-only HTTP API of the serve command.
type APIConfig struct {
	Address string `json:"address"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
