package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Broodje2/kudos-bot/internal/domain"
)

func newJournalCommand(root *rootOptions) *cobra.Command {
	var (
		channel string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent membership sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set, the journal is disabled")
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.journal.RecentSyncRuns(cmd.Context(), channel, limit)
			if err != nil {
				return err
			}
			return printSyncRuns(cmd.OutOrStdout(), runs, cfg.Location())
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "only runs for this channel id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	return cmd
}

func printSyncRuns(w io.Writer, runs []domain.SyncRun, loc *time.Location) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no sync runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tCHANNEL\tMEMBERS\tSYNCED\tFAILED\tDURATION")
	for _, r := range runs {
		failed := "-"
		if len(r.Failed) > 0 {
			failed = strings.Join(r.Failed, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.StartedAt.In(loc).Format(time.DateTime), r.ChannelID, r.Members, r.Synced, failed,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	return tw.Flush()
}
