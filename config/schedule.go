package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// ScheduleConfig defines when the serve command runs an analysis.
type ScheduleConfig struct {
	// Cron is a standard five-field expression or a descriptor such as
	// "@every 15m".
	Cron string `json:"cron"`
	// RunOnStart triggers a run immediately instead of waiting for the
	// first tick.
	RunOnStart *bool `json:"run_on_start"`
}

// SetDefaults applies sane defaults.
func (c *ScheduleConfig) SetDefaults() {
	if c.Cron == "" {
		c.Cron = "@every 15m"
	}
	if c.RunOnStart == nil {
		on := true
		c.RunOnStart = &on
	}
}

// Validate parses the cron expression.
func (c ScheduleConfig) Validate() error {
	if _, err := cron.ParseStandard(c.Cron); err != nil {
		return fmt.Errorf("invalid cron %q: %w", c.Cron, err)
	}
	return nil
}
