package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"byebye/internal/batch"
	"byebye/internal/inventory"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var (
		viewName     string
		unidentified bool
		noApply      bool
	)

	cmd := &cobra.Command{
		Use:   "identify [id|sku]...",
		Short: "Identify items against Discogs by catalog number",
		Long: `Search Discogs for each item's catalog number, one item at a time.
An item with exactly one match gets the match's title and artist unless
--no-apply is given. Items come from the arguments, a saved view, or
--unidentified for every item still missing a title or artist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *inventory.Store) error {
				ids, err := identifyTargets(cmd, store, args, viewName, unidentified)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to identify")
					return nil
				}

				lock, err := batch.AcquireLock(cfg.BatchLockPath())
				if err != nil {
					if errors.Is(err, batch.ErrBusy) {
						return fmt.Errorf("%w (lock %s)", err, cfg.BatchLockPath())
					}
					return err
				}
				defer func() { _ = lock.Release() }()

				var opts []batch.Option
				if noApply {
					opts = append(opts, batch.WithAutoApply(false))
				}
				runner, err := ctx.runner(store, opts...)
				if err != nil {
					return err
				}

				summary, runErr := runner.Run(cmd.Context(), ids, progressObserver(cmd.ErrOrStderr()))
				if ok, err := ctx.emit(cmd, summary); ok || err != nil {
					if err != nil {
						return err
					}
					return runErr
				}
				out := cmd.OutOrStdout()
				if len(summary.States) > 0 {
					fmt.Fprintln(out, renderSummary(summary, shouldColorize(out)))
					fmt.Fprintf(out, "Identified %d of %d", summary.Found, summary.Total)
					if review := summary.Review(); review > 0 {
						fmt.Fprintf(out, ", %d need review", review)
					}
					if failed := summary.Counts[batch.OutcomeError]; failed > 0 {
						fmt.Fprintf(out, ", %d failed", failed)
					}
					fmt.Fprintln(out)
				}
				return runErr
			})
		},
	}

	cmd.Flags().StringVar(&viewName, "view", "", "Identify the items a saved view selects")
	cmd.Flags().BoolVar(&unidentified, "unidentified", false, "Identify every item missing a title or artist")
	cmd.Flags().BoolVar(&noApply, "no-apply", false, "Report matches without updating items")
	return cmd
}

func identifyTargets(cmd *cobra.Command, store *inventory.Store, args []string, viewName string, unidentified bool) ([]int64, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, strings.TrimSpace(viewName) != "", unidentified} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("give item ids, --view, or --unidentified (exactly one)")
	}

	if len(args) > 0 {
		ids := make([]int64, 0, len(args))
		for _, ref := range args {
			item, err := lookupItem(cmd.Context(), store, ref)
			if err != nil {
				return nil, err
			}
			ids = append(ids, item.ID)
		}
		return ids, nil
	}

	var filter inventory.Filter
	if unidentified {
		filter.Unidentified = true
	} else {
		view, err := store.GetViewByName(cmd.Context(), viewName)
		if err != nil {
			return nil, err
		}
		if view == nil {
			return nil, fmt.Errorf("view %q not found", strings.TrimSpace(viewName))
		}
		filter = view.Filter
	}
	items, err := store.List(cmd.Context(), filter)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// progressObserver prints one line per item as it reaches a final outcome.
func progressObserver(w io.Writer) batch.Observer {
	reported := make(map[int]bool)
	colorize := shouldColorize(w)
	return func(states []batch.ItemState) {
		for i, state := range states {
			if !state.Outcome.Terminal() || reported[i] {
				continue
			}
			reported[i] = true
			line := fmt.Sprintf("[%d/%d] %s %s", i+1, len(states), orDash(state.SKU), renderOutcome(state.Outcome, colorize))
			if state.Error != "" {
				line += ": " + state.Error
			}
			fmt.Fprintln(w, line)
		}
	}
}

func renderSummary(summary batch.Summary, colorize bool) string {
	rows := make([][]string, 0, len(summary.States))
	for _, state := range summary.States {
		match := "-"
		if state.Candidate != nil {
			match = strings.TrimSpace(state.Candidate.Artist + " - " + state.Candidate.Title)
			match = strings.Trim(match, "- ")
			if match == "" {
				match = "-"
			}
		} else if state.Error != "" {
			match = state.Error
		}
		rows = append(rows, []string{
			orDash(state.SKU),
			orDash(state.CatalogNo),
			renderOutcome(state.Outcome, colorize),
			match,
		})
	}
	return renderTable([]string{"SKU", "Catalog No", "Outcome", "Match"}, rows, nil)
}
