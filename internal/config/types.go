// Package config provides the project configuration shared by the CLI and
// any other tool that validates against an odmval project directory.
package config

import (
	"fmt"

	"github.com/leapstack-labs/odmval/pkg/report"
	"github.com/leapstack-labs/odmval/pkg/rules"
	"github.com/leapstack-labs/odmval/pkg/version"
)

// DictionaryConfig locates the dictionary tables a schema is compiled from.
type DictionaryConfig struct {
	Parts string `koanf:"parts"`
	Sets  string `koanf:"sets"`
}

// RulesConfig selects which rules run.
type RulesConfig struct {
	Whitelist []string `koanf:"whitelist"`
	Blacklist []string `koanf:"blacklist"`
}

// Filter converts the configured rule names.
func (c RulesConfig) Filter() (rules.Filter, error) {
	return rules.ParseFilter(c.Whitelist, c.Blacklist)
}

// ProjectConfig is the content of odmval.yaml.
type ProjectConfig struct {
	// Version is the dictionary version to validate against. Empty means
	// the latest known release.
	Version     string           `koanf:"version"`
	Dictionary  DictionaryConfig `koanf:"dictionary"`
	Rules       RulesConfig      `koanf:"rules"`
	Verbosity   int              `koanf:"verbosity"`
	BatchSize   int              `koanf:"batch_size"`
	Workers     int              `koanf:"workers"`
	HistoryPath string           `koanf:"history_path"`
}

// TargetVersion resolves the configured dictionary version.
func (c *ProjectConfig) TargetVersion() (version.Version, error) {
	if c.Version == "" {
		return version.Latest(), nil
	}
	return version.Resolve(c.Version)
}

// Validate checks field ranges and names.
func (c *ProjectConfig) Validate() error {
	if _, err := c.TargetVersion(); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if c.Verbosity < int(report.VerbosityMessage) || c.Verbosity > int(report.VerbosityLong) {
		return fmt.Errorf("verbosity must be between %d and %d, got %d",
			report.VerbosityMessage, report.VerbosityLong, c.Verbosity)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.BatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := c.Rules.Filter(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}
