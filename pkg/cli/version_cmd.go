package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"osident/internal/config"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if a.format(out) == config.OutputJSON {
				return printJSON(out, map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(out, "osident version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
