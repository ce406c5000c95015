package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agrichain/internal/repository"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the mock ledger batches and products into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := repository.Seed(ctx, store); err != nil {
				return err
			}
			a.logger.Info("ledger seeded",
				"driver", a.cfg.Store.Driver,
				"batches", len(repository.SeedBatches()),
				"products", len(repository.SeedProducts()),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d batches and %d products into %s store\n",
				len(repository.SeedBatches()), len(repository.SeedProducts()), a.cfg.Store.Driver)
			return err
		},
	}
}
