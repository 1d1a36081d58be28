package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slack-go/slack/socketmode"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Broodje2/kudos-bot/internal/bot"
	"github.com/Broodje2/kudos-bot/internal/server"
	"github.com/Broodje2/kudos-bot/internal/socket"
)

const drainTimeout = 30 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect over Socket Mode and handle interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if cfg.AppToken == "" {
				return errors.New("SLACK_APP_TOKEN is required for serve")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	router := bot.NewRouter(a.platform, a.log, bot.WithHandlerTimeout(a.cfg.HandlerTimeout))
	a.handler.Register(router)

	client := socketmode.New(a.api,
		socketmode.OptionDebug(a.cfg.SlackDebug),
		socketmode.OptionLog(a.log.StdLog()),
	)
	listener := socket.New(client, router, a.log)
	admin := server.New(fmt.Sprintf(":%d", a.cfg.Port), a.log)

	a.log.Info("kudos bot starting", "ledger", a.cfg.LedgerURL, "admin_port", a.cfg.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listener.Run(gctx) })
	g.Go(func() error { return admin.Run(gctx) })
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	a.log.Info("draining in-flight handlers")
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if werr := router.Wait(drainCtx); werr != nil {
		a.log.Warn("handlers still running at shutdown", "error", werr)
	}
	a.log.Info("kudos bot stopped")
	return err
}
