package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSyncCommand(root *rootOptions) *cobra.Command {
	var channel string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upsert every member of a channel into the ledger",
		Long: `Reconcile one channel's membership with the ledger and print the report.
Nothing is posted to the channel.

Example:
  bot sync --channel C0123456789`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.handler.Synchronizer().Reconcile(cmd.Context(), channel)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "channel %s: %d members, %d synced, %d failed\n",
				rep.ChannelID, rep.Members, len(rep.Synced), len(rep.Failed))
			if len(rep.Failed) > 0 {
				fmt.Fprintf(out, "failed: %s\n", strings.Join(rep.Failed, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "channel id to sync")
	_ = cmd.MarkFlagRequired("channel")
	return cmd
}
