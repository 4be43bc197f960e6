package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"byebye/internal/inventory"
)

func newViewCommand(ctx *commandContext) *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Manage saved item filters",
	}
	viewCmd.AddCommand(newViewSaveCommand(ctx))
	viewCmd.AddCommand(newViewListCommand(ctx))
	viewCmd.AddCommand(newViewRemoveCommand(ctx))
	return viewCmd
}

func newViewSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		filter inventory.Filter
		format string
	)
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a filter under a name, replacing an existing view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(format) != "" {
				parsed, err := inventory.ParseFormat(format)
				if err != nil {
					return err
				}
				filter.Format = parsed
			}
			return ctx.withStore(func(store *inventory.Store) error {
				view, err := store.SaveView(cmd.Context(), args[0], filter)
				if err != nil {
					return err
				}
				if ok, err := ctx.emit(cmd, view); ok || err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved view %q\n", view.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter.Text, "text", "", "Match SKU, title, artist, or catalog number")
	cmd.Flags().StringVar(&format, "format", "", "Only items of this format")
	cmd.Flags().BoolVar(&filter.Unidentified, "unidentified", false, "Only items missing a title or artist")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of items")
	return cmd
}

func newViewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved views",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *inventory.Store) error {
				views, err := store.ListViews(cmd.Context())
				if err != nil {
					return err
				}
				if views == nil {
					views = []*inventory.View{}
				}
				if ok, err := ctx.emit(cmd, views); ok || err != nil {
					return err
				}
				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved views")
					return nil
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{strconv.FormatInt(v.ID, 10), v.Name, describeFilter(v.Filter)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Filter"}, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}
}

func describeFilter(filter inventory.Filter) string {
	var parts []string
	if filter.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", filter.Text))
	}
	if filter.Format != "" {
		parts = append(parts, "format="+string(filter.Format))
	}
	if filter.Unidentified {
		parts = append(parts, "unidentified")
	}
	if filter.Limit > 0 {
		parts = append(parts, "limit="+strconv.Itoa(filter.Limit))
	}
	if len(parts) == 0 {
		return "all items"
	}
	return strings.Join(parts, " ")
}

func newViewRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <view-id>...",
		Aliases: []string{"remove"},
		Short:   "Delete saved views",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *inventory.Store) error {
				for _, id := range ids {
					removed, err := store.DeleteView(cmd.Context(), id)
					if err != nil {
						return err
					}
					if !removed {
						fmt.Fprintf(cmd.OutOrStdout(), "View %d not found\n", id)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed view %d\n", id)
				}
				return nil
			})
		},
	}
}
