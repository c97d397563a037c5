package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/odmval/pkg/version"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(v string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display odmval version and the dictionary releases it knows.`,
		Run: func(cmd *cobra.Command, _ []string) {
			known := make([]string, 0, len(version.Known()))
			for _, k := range version.Known() {
				known = append(known, k.String())
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "odmval v%s\n", v)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dictionary versions: %s (latest %s)\n",
				strings.Join(known, ", "), version.Latest())
		},
	}
}
