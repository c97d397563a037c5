package config

import (
	"fmt"
	"os"
	"slices"
)

// OutputModes are the accepted values of the output key.
var OutputModes = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks the shared project settings and the output mode.
func (c *Config) Validate() error {
	if err := c.ProjectConfig.Validate(); err != nil {
		return err
	}
	if c.OutputFormat != "" && !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("unknown output mode %q (expected one of %v)", c.OutputFormat, OutputModes)
	}
	return nil
}

// ValidateDictionary checks that the dictionary files exist.
func (c *Config) ValidateDictionary() error {
	if c.Dictionary.Parts == "" {
		return fmt.Errorf("dictionary parts file is required\nHint: set dictionary.parts in odmval.yaml or use --parts")
	}
	for _, path := range []string{c.Dictionary.Parts, c.Dictionary.Sets} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("dictionary file does not exist: %s", path)
		}
	}
	return nil
}
