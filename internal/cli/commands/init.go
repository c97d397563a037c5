package commands

import (
	"fmt"
	"os"
	"path/filepath"

	intconfig "github.com/leapstack-labs/odmval/internal/config"
	"github.com/leapstack-labs/odmval/pkg/version"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Force   bool
	Parts   string
	Sets    string
	Version string
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize an odmval project",
		Long: `Initialize an odmval project with an odmval.yaml configuration file and a
.gitignore for the run history directory.

Paths in odmval.yaml are relative to the project directory.`,
		Example: `  # Initialize in current directory
  odmval init

  # Initialize for a pinned release and dictionary location
  odmval init my-project --dict-version 2.0.0 --dict-parts dictionary/parts.csv

  # Force overwrite existing config
  odmval init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(NewCommandContext(cmd), dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing configuration")
	cmd.Flags().StringVar(&opts.Parts, "dict-parts", "parts.csv", "Dictionary parts file, relative to the project")
	cmd.Flags().StringVar(&opts.Sets, "dict-sets", "sets.csv", "Dictionary sets file, relative to the project")
	cmd.Flags().StringVar(&opts.Version, "dict-version", "", "Pin a dictionary release (default: latest)")

	return cmd
}

func runInit(cmdCtx *CommandContext, dir string, opts *InitOptions) error {
	r := cmdCtx.Renderer

	if opts.Version != "" {
		if _, err := version.Resolve(opts.Version); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, intconfig.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", intconfig.ConfigFileName)
	}

	err := renderConfigTemplate(configPath, projectTemplate{
		Version:     opts.Version,
		Parts:       opts.Parts,
		Sets:        opts.Sets,
		Verbosity:   intconfig.DefaultVerbosity,
		BatchSize:   intconfig.DefaultBatchSize,
		HistoryPath: intconfig.DefaultHistoryPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	r.Success("created " + configPath)

	ignore, err := copyStaticTemplate("gitignore", dir, opts.Force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	if ignore != "" {
		r.Success("created " + ignore)
	}

	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Put the dictionary parts and sets files where odmval.yaml points")
	r.Println("  2. Run 'odmval tables' to see the tables of the release")
	r.Println("  3. Run 'odmval validate <file>...' to check your data")
	return nil
}
