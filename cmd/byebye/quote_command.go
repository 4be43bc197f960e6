package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"byebye/internal/inventory"
	"byebye/internal/pricing"
)

func newQuoteCommand(ctx *commandContext) *cobra.Command {
	var itemRef string

	cmd := &cobra.Command{
		Use:   "quote <release-id>",
		Short: "Show the market picture for a Discogs release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || releaseID <= 0 {
				return fmt.Errorf("invalid release id %q", args[0])
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			aggregator, err := ctx.aggregator()
			if err != nil {
				return err
			}
			quote, err := aggregator.Quote(cmd.Context(), releaseID)
			if err != nil {
				return err
			}

			if itemRef != "" {
				if err := ctx.withStore(func(store *inventory.Store) error {
					item, err := lookupItem(cmd.Context(), store, itemRef)
					if err != nil {
						return err
					}
					return store.SetReleaseID(cmd.Context(), item.ID, releaseID)
				}); err != nil {
					return err
				}
			}

			if ok, err := ctx.emit(cmd, quote); ok || err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderKeyValues(quoteProperties(quote, cfg.Pricing.USDToJPY)))
			if quote.ScrapeDegraded {
				fmt.Fprintln(out, "Sales history page was not recognised; history figures may be missing.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&itemRef, "item", "", "Link the release to this item (id or SKU)")
	return cmd
}

func quoteProperties(q *pricing.Quote, rate float64) [][2]string {
	price := func(amount *pricing.Amount) string {
		d := pricing.Format(amount, rate)
		switch {
		case d.Sub != "" && d.Estimated:
			return fmt.Sprintf("%s (%s, est.)", d.Text, d.Sub)
		case d.Sub != "":
			return fmt.Sprintf("%s (%s)", d.Text, d.Sub)
		case d.Estimated:
			return d.Text + " (est.)"
		}
		return d.Text
	}
	count := func(v *int) string {
		if v == nil {
			return pricing.Placeholder
		}
		return strconv.Itoa(*v)
	}
	text := func(v *string) string {
		if v == nil {
			return pricing.Placeholder
		}
		return orDash(*v)
	}
	rating := pricing.Placeholder
	if q.AvgRating != nil {
		rating = strconv.FormatFloat(*q.AvgRating, 'f', 2, 64)
	}

	pairs := [][2]string{
		{"Release", strconv.FormatInt(q.ReleaseID, 10)},
		{"Year", text(q.ReleasedYear)},
		{"Want / Have", count(q.WantCount) + " / " + count(q.HaveCount)},
		{"Rating", rating},
		{"For sale", count(q.ForSaleCount)},
		{"Lowest listing", price(q.LowestListing)},
		{"History low", price(q.HistoryLow)},
		{"History median", price(q.HistoryMedian)},
		{"History high", price(q.HistoryHigh)},
		{"History average", price(q.HistoryAverage)},
		{"Last sold", text(q.LastSoldDate)},
	}
	for _, condition := range slices.Sorted(maps.Keys(q.Suggestions)) {
		amount := q.Suggestions[condition]
		pairs = append(pairs, [2]string{"Suggested " + condition, price(&amount)})
	}
	pairs = append(pairs, [2]string{"Source", q.SourceURL})
	return pairs
}
