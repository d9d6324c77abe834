package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write a JSONL snapshot of all spaces, items and moves",
		Long: `Write spaces.jsonl, items.jsonl and moves.jsonl into dir. Each file is
replaced atomically.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return systemErr(err)
			}
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				if err := inv.Export(ctx, dir); err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, map[string]string{"dir": dir})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Exported to", dir)
				return nil
			})
		},
	}
}
