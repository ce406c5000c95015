package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"agrichain/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the actions and ledger over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			h, closeStore, err := buildHandler(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()

			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			srv, err := server.New(server.Config{Addr: addr, Handler: h, Logger: a.logger})
			if err != nil {
				return err
			}
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
