package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

func (a *app) newAddItemCmd() *cobra.Command {
	var space, location, description string

	cmd := &cobra.Command{
		Use:   "add-item <name>",
		Short: "Add an item to a space",
		Long: `Add an item to an existing space, named with --space.

Example:
  binlid add-item "Bin lid" --space "Cupboard under stairs" --location "back left"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				item, err := inv.CreateItem(ctx, types.NewItem{
					Name:        args[0],
					Space:       types.SpaceByName(space),
					Location:    location,
					Description: description,
				})
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added item #%d %s to %s\n", item.ID, item.Name, item.SpaceName)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&space, "space", "", "name of the space holding the item")
	cmd.Flags().StringVar(&location, "location", "", "where in the space the item is")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	_ = cmd.MarkFlagRequired("space")
	return cmd
}

func (a *app) newListItemsCmd() *cobra.Command {
	var space string

	cmd := &cobra.Command{
		Use:   "list-items",
		Short: "List items, most recently moved first",
		Long: `List items ordered by when they were last added or moved.

Example:
  binlid list-items
  binlid list-items --space Garage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				var filter types.ItemFilter
				if space != "" {
					s, err := inv.GetSpace(ctx, types.SpaceByName(space))
					if err != nil {
						return err
					}
					filter.SpaceID = s.ID
				}
				items, err := inv.ListItems(ctx, filter)
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
	cmd.Flags().StringVar(&space, "space", "", "only items in this space")
	return cmd
}
