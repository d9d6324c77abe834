package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/pkg/binlid"
)

const modulePath = "github.com/mesh-intelligence/binlid"

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the binlid version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.jsonMode {
				return printJSON(cmd, map[string]string{"version": binlid.Version, "module": modulePath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "binlid %s\nmodule: %s\n", binlid.Version, modulePath)
			return nil
		},
	}
}
