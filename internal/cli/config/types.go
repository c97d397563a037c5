// Package config loads the CLI configuration: the shared project settings
// plus the CLI-only output and logging switches.
package config

import (
	intconfig "github.com/leapstack-labs/odmval/internal/config"
)

// RulesConfig is an alias for the shared rule selection.
type RulesConfig = intconfig.RulesConfig

// DictionaryConfig is an alias for the shared dictionary location.
type DictionaryConfig = intconfig.DictionaryConfig

// Config holds all CLI configuration options.
type Config struct {
	intconfig.ProjectConfig `koanf:",squash"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultHistoryPath = intconfig.DefaultHistoryPath
	DefaultOutput      = "auto" // TTY=text, non-TTY=markdown
	EnvPrefix          = "ODMVAL_"
)
