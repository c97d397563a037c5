package config

import (
	"github.com/leapstack-labs/odmval/pkg/report"
	"github.com/leapstack-labs/odmval/pkg/validate"
)

// Default configuration values.
const (
	DefaultHistoryPath = ".odmval/history.db"
	DefaultBatchSize   = validate.DefaultBatchSize
	DefaultVerbosity   = int(report.DefaultVerbosity)
)

// Defaults returns the default values keyed the way the config file keys
// them.
func Defaults() map[string]any {
	return map[string]any{
		"version":      "",
		"verbosity":    DefaultVerbosity,
		"batch_size":   DefaultBatchSize,
		"workers":      0,
		"history_path": DefaultHistoryPath,
	}
}

// ApplyDefaults fills unset fields of a ProjectConfig.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.HistoryPath == "" {
		c.HistoryPath = DefaultHistoryPath
	}
}
