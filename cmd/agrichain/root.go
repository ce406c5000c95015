package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"agrichain/internal/config"
	"agrichain/internal/logging"
)

// app carries state shared by every subcommand. Configuration is read only
// here; packages receive values through constructors.
type app struct {
	cfgPath string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "agrichain",
		Short: "AgriChain farm assistant and supply-chain ledger",
		Long: `AgriChain serves AI-assisted farming actions (crop suggestions, disease
diagnosis, market and weather insights, voice replies) alongside a mock
farm-to-consumer ledger.

Configuration comes from an optional YAML file and AGRICHAIN_* environment
variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newLambdaCmd(a),
		newServeCmd(a),
		newInvokeCmd(a),
		newSeedCmd(a),
	)
	return root
}
