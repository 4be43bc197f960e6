package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"byebye/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, Discogs access, and notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if ok, err := ctx.emit(cmd, results); ok || err != nil {
				if err != nil {
					return err
				}
				return statusError(results)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				color := ansiGreen
				if !r.Passed {
					state = "fail"
					color = ansiRed
				}
				if colorize {
					state = color + state + ansiReset
				}
				rows = append(rows, []string{r.Name, state, r.Detail})
			}
			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			fmt.Fprintln(out, renderTable([]string{"Check", "State", "Detail"}, rows, nil))
			return statusError(results)
		},
	}
}

func statusError(results []preflight.Result) error {
	if preflight.Failed(results) {
		return errors.New("one or more checks failed")
	}
	return nil
}
