// Package config provides YAML-based configuration loading for FiberPlan.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/opticnet/fiberplan/internal/phase"
	"gopkg.in/yaml.v3"
)

// Config is the top-level FiberPlan configuration, loaded from fiberplan.yaml.
type Config struct {
	Timezone  string          `yaml:"timezone"`
	Database  DatabaseConfig  `yaml:"database"`
	Durations map[string]int  `yaml:"durations"`
	Notify    NotifyConfig    `yaml:"notify"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	Path   string `yaml:"path"`   // sqlite file path
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
}

// NotifyConfig holds deadline-sweep notification settings.
type NotifyConfig struct {
	SlackToken   string `yaml:"slack_token"`
	SlackChannel string `yaml:"slack_channel"`
	Cron         string `yaml:"cron"` // 5-field cron expression for the sweep
}

// DashboardConfig holds settings for the status API server.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// DefaultDurations is the stock per-phase business-day budget, used when the
// config file carries no durations block.
var DefaultDurations = phase.Durations{
	phase.Planning:     10,
	phase.Funding:      2,
	phase.Wayleave:     0,
	phase.Materials:    15,
	phase.Announcement: 1,
	phase.Kickoff:      2,
	phase.Build:        20,
	phase.FQA:          0,
	phase.ECC:          1,
	phase.Integration:  2,
	phase.RFA:          1,
	phase.COM:          0,
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PhaseDurations returns the configured duration table merged over the
// defaults.
func (c *Config) PhaseDurations() phase.Durations {
	overrides := make(phase.Durations, len(c.Durations))
	for name, days := range c.Durations {
		overrides[phase.Name(name)] = days
	}
	return DefaultDurations.Merge(overrides)
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Africa/Johannesburg"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "fiberplan.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
	}
	if c.Notify.Cron == "" {
		c.Notify.Cron = "0 7 * * 1-5"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.Name == "" {
		errs = append(errs, "database.name is required for mysql")
	}
	if err := c.PhaseDurations().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
