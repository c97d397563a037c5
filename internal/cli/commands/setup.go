package commands

import (
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/odmval/internal/cli/config"
	"github.com/leapstack-labs/odmval/internal/cli/output"
	intconfig "github.com/leapstack-labs/odmval/internal/config"
	"github.com/leapstack-labs/odmval/internal/loader"
	"github.com/leapstack-labs/odmval/internal/state"
	"github.com/leapstack-labs/odmval/pkg/dictionary"
	"github.com/leapstack-labs/odmval/pkg/rules"
	"github.com/leapstack-labs/odmval/pkg/schema"
	"github.com/leapstack-labs/odmval/pkg/version"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a renderer for the
// configured output mode.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// WithFormat overrides the renderer mode when a command-level format flag
// is set.
func (c *CommandContext) WithFormat(cmd *cobra.Command, format string) *CommandContext {
	if format != "" {
		c.Renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	}
	return c
}

// getConfig returns the loaded configuration, or the defaults when the
// command runs without the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	cfg := &config.Config{OutputFormat: config.DefaultOutput}
	cfg.Verbosity = intconfig.DefaultVerbosity
	intconfig.ApplyDefaults(&cfg.ProjectConfig)
	return cfg
}

// compileSchema builds the dictionary model for the configured version and
// compiles it with the configured rule filter.
func (c *CommandContext) compileSchema() (*schema.Schema, *dictionary.Model, error) {
	if err := c.Cfg.ValidateDictionary(); err != nil {
		return nil, nil, err
	}
	target, err := c.Cfg.TargetVersion()
	if err != nil {
		return nil, nil, err
	}
	filter, err := c.Cfg.Rules.Filter()
	if err != nil {
		return nil, nil, err
	}

	parts, sets, err := loader.ReadDictionary(c.Cfg.Dictionary.Parts, c.Cfg.Dictionary.Sets)
	if err != nil {
		return nil, nil, err
	}
	m, err := dictionary.Build(parts, sets, target, dictionary.WithLogger(c.Logger))
	if err != nil {
		return nil, nil, fmt.Errorf("build dictionary %s: %w", target, err)
	}
	return rules.Compile(m, filter), m, nil
}

// loadSchema reads a compiled schema when path is set, else compiles one
// from the dictionary.
func (c *CommandContext) loadSchema(path string) (*schema.Schema, error) {
	if path != "" {
		s, err := loader.ReadSchema(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		c.Logger.Debug("loaded schema", slog.String("path", path), slog.String("version", s.Version.String()))
		return s, nil
	}
	s, _, err := c.compileSchema()
	return s, err
}

// openStore opens the run history database.
func (c *CommandContext) openStore() (*state.SQLiteStore, error) {
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.HistoryPath); err != nil {
		return nil, fmt.Errorf("open history %s: %w", c.Cfg.HistoryPath, err)
	}
	return store, nil
}

// targetVersion resolves an explicit version flag or falls back to the
// configured version.
func (c *CommandContext) targetVersion(explicit string) (version.Version, error) {
	if explicit != "" {
		return version.Resolve(explicit)
	}
	return c.Cfg.TargetVersion()
}

func newTable(r *output.Renderer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.Writer())
	tw.SetStyle(table.StyleLight)
	return tw
}

func renderTable(r *output.Renderer, tw table.Writer) {
	if r.EffectiveMode() == output.ModeMarkdown {
		tw.RenderMarkdown()
		return
	}
	tw.Render()
}
