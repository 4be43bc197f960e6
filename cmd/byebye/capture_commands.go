package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"byebye/internal/inventory"
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Attach and manage item photos",
	}

	var kind string
	addCmd := &cobra.Command{
		Use:   "add <id|sku> <path>",
		Short: "Record a photo path for an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := inventory.ParseCaptureKind(kind)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *inventory.Store) error {
				item, err := lookupItem(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				capture, err := store.AddCapture(cmd.Context(), item.ID, args[1], parsed)
				if err != nil {
					return err
				}
				if ok, err := ctx.emit(cmd, capture); ok || err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s capture %d to %s\n", capture.Kind, capture.ID, item.SKU)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&kind, "kind", string(inventory.CaptureCover), "Capture kind: cover, label, back, or other")

	listCmd := &cobra.Command{
		Use:     "list <id|sku>",
		Aliases: []string{"ls"},
		Short:   "List an item's captures",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *inventory.Store) error {
				item, err := lookupItem(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				captures, err := store.ListCaptures(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				if captures == nil {
					captures = []*inventory.Capture{}
				}
				if ok, err := ctx.emit(cmd, captures); ok || err != nil {
					return err
				}
				if len(captures) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No captures for %s\n", item.SKU)
					return nil
				}
				rows := make([][]string, 0, len(captures))
				for _, c := range captures {
					rows = append(rows, []string{
						strconv.FormatInt(c.ID, 10),
						string(c.Kind),
						c.Path,
						c.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Kind", "Path", "Added"}, rows, []columnAlignment{alignRight}))
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:     "rm <capture-id>...",
		Aliases: []string{"remove"},
		Short:   "Delete capture records",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *inventory.Store) error {
				for _, id := range ids {
					removed, err := store.DeleteCapture(cmd.Context(), id)
					if err != nil {
						return err
					}
					if !removed {
						fmt.Fprintf(cmd.OutOrStdout(), "Capture %d not found\n", id)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed capture %d\n", id)
				}
				return nil
			})
		},
	}

	captureCmd.AddCommand(addCmd, listCmd, removeCmd)
	return captureCmd
}
