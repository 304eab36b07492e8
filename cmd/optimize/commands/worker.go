package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/optimize/internal/app"
)

func (c *CLI) newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:    app.WorkerCommand + " [-- command...]",
		Short:  "Serve transformation requests on stdin and stdout",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := args
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				argv = args[dash:]
			}
			return c.app.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), argv)
		},
	}
}
