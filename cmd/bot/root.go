package main

import (
	"github.com/spf13/cobra"

	"github.com/Broodje2/kudos-bot/internal/config"
)

type rootOptions struct {
	envFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "bot",
		Short:         "Slack kudos bot",
		Long:          "Slack front end for the kudos ledger: slash commands, the give-kudos modal, the leaderboard and channel membership sync.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load before the environment (default .env)")

	serve := newServeCommand(opts)
	cmd.RunE = serve.RunE
	cmd.AddCommand(serve)
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newJournalCommand(opts))
	return cmd
}

func (o *rootOptions) config() (config.Config, error) {
	if o.envFile != "" {
		return config.LoadFile(o.envFile)
	}
	return config.Load()
}
