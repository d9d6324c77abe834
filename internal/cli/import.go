package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Restore a JSONL snapshot into an empty database",
		Long: `Load spaces.jsonl, items.jsonl and moves.jsonl from dir, as written by
export. The database must be empty. Ids, timestamps and move history are
kept; lines that are not valid JSON are skipped and reported.

Example:
  binlid --db fresh.db import ./backup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return systemErr(err)
			}
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				res, err := inv.Import(ctx, dir)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d spaces, %d items, %d moves from %s\n",
					res.Spaces, res.Items, res.Moves, dir)
				if res.Skipped > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d malformed lines\n", res.Skipped)
				}
				return nil
			})
		},
	}
}
