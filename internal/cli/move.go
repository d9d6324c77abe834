package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

func (a *app) newMoveCmd() *cobra.Command {
	var to, note string

	cmd := &cobra.Command{
		Use:   "move <item-id>",
		Short: "Move an item to another space",
		Long: `Move an item to the space named with --to. The move is recorded in the
item's history.

Example:
  binlid move 12 --to Attic --note "spring clean"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				dest, err := inv.GetSpace(ctx, types.SpaceByName(to))
				if err != nil {
					return err
				}
				move, err := inv.MoveItem(ctx, types.MoveRequest{ItemID: itemID, ToSpaceID: dest.ID, Note: note})
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, move)
				}
				from := "#" + strconv.FormatInt(move.FromSpaceID, 10)
				if s, err := inv.GetSpace(ctx, types.SpaceByID(move.FromSpaceID)); err == nil {
					from = s.Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved item #%d: %s -> %s\n", move.ItemID, from, dest.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "name of the destination space")
	cmd.Flags().StringVar(&note, "note", "", "why the item moved")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show where an item has been, oldest move first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				moves, err := inv.ListMoves(ctx, itemID)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, moves)
				}
				if len(moves) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No moves recorded.")
					return nil
				}

				spaces, err := inv.ListSpaces(ctx)
				if err != nil {
					return err
				}
				names := make(map[int64]string, len(spaces))
				for _, s := range spaces {
					names[s.ID] = s.Name
				}

				rows := make([][]string, 0, len(moves))
				for _, m := range moves {
					rows = append(rows, []string{
						strconv.FormatInt(m.ID, 10),
						names[m.FromSpaceID],
						names[m.ToSpaceID],
						truncate(m.Note, 40),
						m.CreatedAt.Local().Format(timeFormat),
					})
				}
				printTable(cmd.OutOrStdout(), []string{"MOVE", "FROM", "TO", "NOTE", "WHEN"}, rows)
				return nil
			})
		},
	}
}
