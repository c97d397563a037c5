package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/leapstack-labs/odmval/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), intconfig.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("verbosity", 2, "")
	flags.String("output", "", "")
	flags.String("parts", "", "")
	flags.String("history", "", "")
	flags.StringSlice("whitelist", nil, "")
	flags.String("format", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "verbose: false\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, intconfig.DefaultVerbosity, cfg.Verbosity)
	assert.Equal(t, intconfig.DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, filepath.Dir(cfgPath), cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), DefaultHistoryPath), cfg.HistoryPath)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileValues(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, `
version: 1.1.0
dictionary:
  parts: dict/parts.csv
  sets: dict/sets.csv
rules:
  whitelist: [invalid_type, invalid_category]
batch_size: 50
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	root := filepath.Dir(cfgPath)
	assert.Equal(t, "1.1.0", cfg.Version)
	assert.Equal(t, filepath.Join(root, "dict", "parts.csv"), cfg.Dictionary.Parts)
	assert.Equal(t, filepath.Join(root, "dict", "sets.csv"), cfg.Dictionary.Sets)
	assert.Equal(t, []string{"invalid_type", "invalid_category"}, cfg.Rules.Whitelist)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "verbosity: 1\n")
	t.Setenv("ODMVAL_VERBOSITY", "0")

	flags := testFlags()
	require.NoError(t, flags.Set("verbosity", "3"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Verbosity, "flag value should override config file and env var")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "verbosity: 1\n")
	t.Setenv("ODMVAL_VERBOSITY", "0")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Verbosity, "env var should override config file")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "verbosity: 1\n")
	t.Setenv("ODMVAL_VERBOSITY", "3")

	cfg, err := LoadConfig(cfgPath, testFlags())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Verbosity, "env var should be used when flag is not set")
}

func TestLoadConfig_EnvNestedList(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "verbose: false\n")
	t.Setenv("ODMVAL_RULES__BLACKLIST", "invalid_type,invalid_category")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"invalid_type", "invalid_category"}, cfg.Rules.Blacklist)
}

func TestLoadConfig_FlagPathsRelativeToCWD(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "dictionary:\n  parts: from_file.csv\n")

	flags := testFlags()
	require.NoError(t, flags.Set("parts", "from_flag.csv"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	want, err := filepath.Abs("from_flag.csv")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Dictionary.Parts)
}

func TestLoadConfig_FlagSlice(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "verbose: false\n")

	flags := testFlags()
	require.NoError(t, flags.Set("whitelist", "missing_values_found"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.Equal(t, []string{"missing_values_found"}, cfg.Rules.Whitelist)
}

func TestLoadConfig_IgnoresCommandFlags(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfigFile(t, "verbose: false\n")

	flags := testFlags()
	require.NoError(t, flags.Set("format", "json"))

	_, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)
	assert.False(t, k.Exists("format"))
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "verbosity out of range", content: "verbosity: 7\n", wantErr: "verbosity"},
		{name: "unknown rule", content: "rules:\n  blacklist: [bogus]\n", wantErr: "unknown rule"},
		{name: "unknown version", content: "version: 3.0.0\n", wantErr: "unknown dictionary version"},
		{name: "unknown output", content: "output: html\n", wantErr: "unknown output mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfigFile(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_ValidateDictionary(t *testing.T) {
	dir := t.TempDir()
	parts := filepath.Join(dir, "parts.csv")
	require.NoError(t, os.WriteFile(parts, []byte("partID\n"), 0o600))

	tests := []struct {
		name    string
		dict    DictionaryConfig
		wantErr string
	}{
		{name: "parts only", dict: DictionaryConfig{Parts: parts}},
		{name: "no parts", dict: DictionaryConfig{}, wantErr: "parts file is required"},
		{name: "missing sets", dict: DictionaryConfig{Parts: parts, Sets: filepath.Join(dir, "sets.csv")}, wantErr: "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Dictionary = tt.dict
			err := cfg.ValidateDictionary()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := NewLogger(&Config{Verbose: true})
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
