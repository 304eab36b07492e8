package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/optimize/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "optimize version %s\n", build.Version)
		},
	}
}
