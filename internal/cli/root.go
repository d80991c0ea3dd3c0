// Package cli implements the driftchat command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/driftchat/driftchat/internal/config"
	"github.com/driftchat/driftchat/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// resolved in PersistentPreRunE before any subcommand runs
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driftchat",
		Short: "driftchat — offline-aware chat client",
		Long:  "driftchat is a chat client that bridges connection state between the backend, the local network, and an offline message cache.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.driftchat/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
