package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TrevorS/distances/cmd/distances/internal/build"
)

func newVersionCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), build.String())
				return err
			}
			cfg, err := g.resolve(cmd)
			if err != nil {
				return err
			}
			return Output(build.Get(), OutputOptions{Format: OutputFormat(cfg.Format), Writer: cmd.OutOrStdout()})
		},
	}
}
