package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/optimize/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [out-dir]",
		Short: "Remove the files the last run generated",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.CleanOptions{}
			if len(args) > 0 {
				opts.OutDir = args[0]
			}
			return c.app.Clean(cmd.Context(), opts)
		},
	}
}
