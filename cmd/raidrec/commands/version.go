package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livp123/raidrec/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show the current version of raidrec`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "raidrec %s\n", version.String())
		},
	}
}
