package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [in-dir]",
		Short: "Optimize the bundler output in a directory once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Run(cmd.Context(), runOptions(cmd, args))
			return err
		},
	}
	cmd.Flags().StringP("out", "o", "", "Directory receiving generated files (defaults to the input directory)")
	cmd.Flags().BoolP("progress", "p", false, "Show a live view of the pass")
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [in-dir]",
		Short: "Optimize a directory and rebuild whenever it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), runOptions(cmd, args))
		},
	}
	cmd.Flags().StringP("out", "o", "", "Directory receiving generated files, outside the input directory")
	cmd.Flags().BoolP("progress", "p", false, "Show a live view of every pass")
	return cmd
}

func (c *CLI) newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := c.app.Fingerprint(runOptions(cmd, args))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), fp)
			return err
		},
	}
}
