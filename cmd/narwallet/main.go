package main

import (
	"context"
	"os"

	"github.com/AlexZinkM/narwallet/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "narwallet",
		Short:        "Local NEAR wallet",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(); err != nil {
				return err
			}
			return setupLogger(config.Get().LogLevel)
		},
	}

	cmd.AddCommand(
		newServeCmd(),
		newCreateUserCmd(),
		newChangePasswordCmd(),
		newPoolsCmd(),
	)
	return cmd
}

func setupLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}
