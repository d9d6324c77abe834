package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

func (a *app) newAddSpaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-space <name> [description...]",
		Short: "Create a storage space",
		Long: `Create a storage space. Words after the name form its description.
Adding a space whose name already exists reports the existing one.

Example:
  binlid add-space "Cupboard under stairs" Kitchen storage`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			description := strings.Join(args[1:], " ")

			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				res, err := inv.CreateSpace(ctx, name, description)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, res)
				}
				if res.Created {
					fmt.Fprintf(cmd.OutOrStdout(), "Created space #%d %s\n", res.ID, res.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Space %s already exists (#%d)\n", res.Name, res.ID)
				}
				return nil
			})
		},
	}
}

func (a *app) newListSpacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-spaces",
		Short: "List all storage spaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInventory(cmd.Context(), func(ctx context.Context, inv types.Inventory) error {
				spaces, err := inv.ListSpaces(ctx)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(cmd, spaces)
				}
				if len(spaces) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No spaces found.")
					return nil
				}
				rows := make([][]string, 0, len(spaces))
				for _, s := range spaces {
					rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name, truncate(s.Description, 50)})
				}
				printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "DESCRIPTION"}, rows)
				return nil
			})
		},
	}
}
