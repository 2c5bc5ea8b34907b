package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/velomagg/core/metrics"
	"github.com/kilianp07/velomagg/infra/mqtt"
)

type Config struct {
	Source     SourceConfig     `json:"source"`
	Analysis   AnalysisConfig   `json:"analysis"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Schedule   ScheduleConfig   `json:"schedule"`
	Export     ExportConfig     `json:"export"`
	API        APIConfig        `json:"api"`
	Logging    LoggingConfig    `json:"logging"`
	Monitoring MonitoringConfig `json:"monitoring"`
}

// Load reads the YAML or JSON file at path, applies K_ prefixed environment
// overrides (K_ANALYSIS__RADIUS_KM sets analysis.radius_km), fills defaults
// and validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section's defaults.
func (c *Config) SetDefaults() {
	c.Source.SetDefaults()
	c.Analysis.SetDefaults()
	c.Schedule.SetDefaults()
	c.Export.SetDefaults()
	c.API.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
	c.Monitoring.SetDefaults()
	if c.Metrics.PrometheusPort == "" {
		c.Metrics.PrometheusPort = ":9100"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	for name, v := range map[string]interface{ Validate() error }{
		"source":     c.Source,
		"analysis":   c.Analysis,
		"schedule":   c.Schedule,
		"export":     c.Export,
		"logging":    c.Logging,
		"mqtt":       c.MQTT,
		"monitoring": c.Monitoring,
	} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
