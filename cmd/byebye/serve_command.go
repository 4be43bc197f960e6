package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"byebye/internal/httpapi"
	"byebye/internal/inventory"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind == "" {
				bind = cfg.Paths.APIBind
			}
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			aggregator, err := ctx.aggregator()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *inventory.Store) error {
				runner, err := ctx.runner(store)
				if err != nil {
					return err
				}
				logger := ctx.log()
				server := httpapi.New(store, resolver, aggregator, runner, httpapi.Options{
					Bind:          bind,
					Token:         cfg.Paths.APIToken,
					BatchLockPath: cfg.BatchLockPath(),
					USDToJPY:      cfg.Pricing.USDToJPY,
				}, logger)
				fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", bind)
				return server.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to paths.api_bind)")
	return cmd
}
