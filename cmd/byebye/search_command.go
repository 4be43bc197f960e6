package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"byebye/internal/catalog"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var q catalog.Query

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search the Discogs catalog",
		Long: `Search the Discogs catalog by catalog number, free text, artist, or title.
A positional argument is used as free text when --query is not given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && q.Query == "" {
				q.Query = args[0]
			}
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			candidates, err := resolver.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			if candidates == nil {
				candidates = []catalog.Candidate{}
			}
			if ok, err := ctx.emit(cmd, candidates); ok || err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCandidates(candidates))
			return nil
		},
	}

	cmd.Flags().StringVar(&q.CatalogNo, "catalog-no", "", "Catalog number")
	cmd.Flags().StringVarP(&q.Query, "query", "q", "", "Free text")
	cmd.Flags().StringVar(&q.Artist, "artist", "", "Artist")
	cmd.Flags().StringVar(&q.Title, "title", "", "Release title")
	return cmd
}

func renderCandidates(candidates []catalog.Candidate) string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		release := "-"
		if c.ReleaseID > 0 {
			release = strconv.FormatInt(c.ReleaseID, 10)
		}
		rows = append(rows, []string{
			release,
			orDash(c.Artist),
			orDash(c.Title),
			orDash(c.CatalogNo),
			orDash(c.Year),
			orDash(c.Label),
			orDash(c.Format),
		})
	}
	return renderTable(
		[]string{"Release", "Artist", "Title", "Catalog No", "Year", "Label", "Format"},
		rows,
		[]columnAlignment{alignRight},
	)
}
