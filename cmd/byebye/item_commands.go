package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"byebye/internal/inventory"
)

func newItemCommand(ctx *commandContext) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Manage inventory items",
	}
	itemCmd.AddCommand(newItemAddCommand(ctx))
	itemCmd.AddCommand(newItemShowCommand(ctx))
	itemCmd.AddCommand(newItemListCommand(ctx))
	itemCmd.AddCommand(newItemUpdateCommand(ctx))
	itemCmd.AddCommand(newItemRemoveCommand(ctx))
	return itemCmd
}

func newItemAddCommand(ctx *commandContext) *cobra.Command {
	var in inventory.NewItem
	var format string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item and allocate its SKU",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := inventory.ParseFormat(format)
			if err != nil {
				return err
			}
			in.Format = parsed
			return ctx.withStore(func(store *inventory.Store) error {
				item, err := store.CreateItem(cmd.Context(), in)
				if err != nil {
					return err
				}
				if ok, err := ctx.emit(cmd, item); ok || err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (id %d)\n", item.SKU, item.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Release title")
	cmd.Flags().StringVar(&in.Artist, "artist", "", "Artist")
	cmd.Flags().StringVar(&in.CatalogNo, "catalog-no", "", "Catalog number printed on the item")
	cmd.Flags().StringVar(&format, "format", "record", "Format: record, cd, book, or other")
	cmd.Flags().StringVar(&in.Condition, "condition", "", "Condition grade, e.g. VG+")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Free-form notes")
	cmd.Flags().Int64Var(&in.CostJPY, "cost", 0, "Purchase cost in yen")
	return cmd
}

func newItemShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|sku>",
		Short: "Show one item with its captures",
		Args:  cobra.ExactArgs(1),
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
				payload := struct {
					inventory.Item `yaml:",inline"`
					Captures       []*inventory.Capture `json:"captures" yaml:"captures"`
				}{*item, captures}
				if ok, err := ctx.emit(cmd, payload); ok || err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderKeyValues(itemProperties(item)))
				if len(captures) > 0 {
					rows := make([][]string, 0, len(captures))
					for _, c := range captures {
						rows = append(rows, []string{strconv.FormatInt(c.ID, 10), string(c.Kind), c.Path})
					}
					fmt.Fprintln(out, renderTable([]string{"Capture", "Kind", "Path"}, rows, []columnAlignment{alignRight}))
				}
				return nil
			})
		},
	}
}

func itemProperties(item *inventory.Item) [][2]string {
	cost := "-"
	if item.CostJPY > 0 {
		cost = "¥" + strconv.FormatInt(item.CostJPY, 10)
	}
	release := "-"
	if item.ReleaseID > 0 {
		release = strconv.FormatInt(item.ReleaseID, 10)
	}
	return [][2]string{
		{"ID", strconv.FormatInt(item.ID, 10)},
		{"SKU", item.SKU},
		{"Title", orDash(item.Title)},
		{"Artist", orDash(item.Artist)},
		{"Catalog No", orDash(item.CatalogNo)},
		{"Format", string(item.Format)},
		{"Condition", orDash(item.Condition)},
		{"Cost", cost},
		{"Release", release},
		{"Notes", orDash(item.Notes)},
		{"Created", item.CreatedAt.Local().Format("2006-01-02 15:04")},
	}
}

func newItemListCommand(ctx *commandContext) *cobra.Command {
	var (
		filter   inventory.Filter
		format   string
		viewName string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *inventory.Store) error {
				effective, err := resolveFilter(cmd, store, viewName, filter, format)
				if err != nil {
					return err
				}
				items, err := store.List(cmd.Context(), effective)
				if err != nil {
					return err
				}
				if items == nil {
					items = []*inventory.Item{}
				}
				if ok, err := ctx.emit(cmd, items); ok || err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderItemTable(items))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Text, "text", "", "Match SKU, title, artist, or catalog number")
	cmd.Flags().StringVar(&format, "format", "", "Only items of this format")
	cmd.Flags().BoolVar(&filter.Unidentified, "unidentified", false, "Only items missing a title or artist")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of items")
	cmd.Flags().StringVar(&viewName, "view", "", "Start from a saved view")
	return cmd
}

// resolveFilter loads the named view and overlays the flags the user set.
func resolveFilter(cmd *cobra.Command, store *inventory.Store, viewName string, flags inventory.Filter, format string) (inventory.Filter, error) {
	var filter inventory.Filter
	if name := strings.TrimSpace(viewName); name != "" {
		view, err := store.GetViewByName(cmd.Context(), name)
		if err != nil {
			return filter, err
		}
		if view == nil {
			return filter, fmt.Errorf("view %q not found", name)
		}
		filter = view.Filter
	}
	changed := cmd.Flags().Changed
	if changed("text") {
		filter.Text = flags.Text
	}
	if changed("unidentified") {
		filter.Unidentified = flags.Unidentified
	}
	if changed("limit") {
		filter.Limit = flags.Limit
	}
	if changed("format") {
		parsed, err := inventory.ParseFormat(format)
		if err != nil {
			return filter, err
		}
		filter.Format = parsed
	}
	return filter, nil
}

func renderItemTable(items []*inventory.Item) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.SKU,
			orDash(item.Artist),
			orDash(item.Title),
			orDash(item.CatalogNo),
			string(item.Format),
		})
	}
	return renderTable(
		[]string{"ID", "SKU", "Artist", "Title", "Catalog No", "Format"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func newItemUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		title, artist, catalogNo, format, condition, notes string
		cost                                               int64
	)

	cmd := &cobra.Command{
		Use:   "update <id|sku>",
		Short: "Change fields of an item; only the flags given are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch inventory.Patch
			changed := cmd.Flags().Changed
			if changed("title") {
				patch.Title = &title
			}
			if changed("artist") {
				patch.Artist = &artist
			}
			if changed("catalog-no") {
				patch.CatalogNo = &catalogNo
			}
			if changed("condition") {
				patch.Condition = &condition
			}
			if changed("notes") {
				patch.Notes = &notes
			}
			if changed("cost") {
				patch.CostJPY = &cost
			}
			if changed("format") {
				parsed, err := inventory.ParseFormat(format)
				if err != nil {
					return err
				}
				patch.Format = &parsed
			}
			if patch.Empty() {
				return errors.New("nothing to update; pass at least one field flag")
			}
			return ctx.withStore(func(store *inventory.Store) error {
				item, err := lookupItem(cmd.Context(), store, args[0])
				if err != nil {
					return err
				}
				updated, err := store.UpdateFields(cmd.Context(), item.ID, patch)
				if err != nil {
					return err
				}
				if ok, err := ctx.emit(cmd, updated); ok || err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.SKU)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Release title (empty clears)")
	cmd.Flags().StringVar(&artist, "artist", "", "Artist (empty clears)")
	cmd.Flags().StringVar(&catalogNo, "catalog-no", "", "Catalog number (empty clears)")
	cmd.Flags().StringVar(&format, "format", "", "Format: record, cd, book, or other")
	cmd.Flags().StringVar(&condition, "condition", "", "Condition grade")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().Int64Var(&cost, "cost", 0, "Purchase cost in yen")
	return cmd
}

func newItemRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|sku>...",
		Aliases: []string{"remove"},
		Short:   "Delete items and their captures",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *inventory.Store) error {
				out := cmd.OutOrStdout()
				for _, ref := range args {
					item, err := lookupItem(cmd.Context(), store, ref)
					if err != nil {
						return err
					}
					if _, err := store.Delete(cmd.Context(), item.ID); err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed %s\n", item.SKU)
				}
				return nil
			})
		},
	}
}

// lookupItem accepts a numeric id or a SKU.
func lookupItem(ctx context.Context, store *inventory.Store, ref string) (*inventory.Item, error) {
	ref = strings.TrimSpace(ref)
	var (
		item *inventory.Item
		err  error
	)
	if id, parseErr := strconv.ParseInt(ref, 10, 64); parseErr == nil {
		item, err = store.GetByID(ctx, id)
	} else {
		item, err = store.GetBySKU(ctx, strings.ToUpper(ref))
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %q not found", ref)
	}
	return item, nil
}

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
