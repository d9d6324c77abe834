package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

const defaultSearchLimit = 20

func (a *app) newSearchCmd() *cobra.Command {
	var (
		limit int
		space string
	)

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Find items by name, description or location",
		Long: `Search items with full-text matching. Every word must match; words are
stemmed, so "batteries" finds "battery".

Example:
  binlid search bin lid
  binlid search --space Garage drill`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				opts := types.SearchOptions{Query: query, Limit: limit}
				if space != "" {
					s, err := inv.GetSpace(ctx, types.SpaceByName(space))
					if err != nil {
						return err
					}
					opts.SpaceID = s.ID
				}
				items, err := inv.SearchItems(ctx, opts)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, items)
				}
				printItems(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultSearchLimit, "maximum number of results (0 = no limit)")
	cmd.Flags().StringVar(&space, "space", "", "only match items in this space")
	return cmd
}
