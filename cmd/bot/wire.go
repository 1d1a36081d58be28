package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/slack-go/slack"

	"github.com/Broodje2/kudos-bot/internal/bot"
	"github.com/Broodje2/kudos-bot/internal/config"
	"github.com/Broodje2/kudos-bot/internal/db"
	"github.com/Broodje2/kudos-bot/internal/ledger"
	"github.com/Broodje2/kudos-bot/internal/logger"
	"github.com/Broodje2/kudos-bot/internal/platform"
	"github.com/Broodje2/kudos-bot/internal/repo"
)

// app holds the collaborators shared by the subcommands.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	api      *slack.Client
	platform *platform.Slack
	ledger   *ledger.Client
	pool     *pgxpool.Pool // nil without DATABASE_URL
	journal  *repo.Journal // nil without DATABASE_URL
	handler  *bot.Handler
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	opts := []slack.Option{
		slack.OptionDebug(cfg.SlackDebug),
		slack.OptionLog(log.StdLog()),
	}
	if cfg.AppToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(cfg.AppToken))
	}
	api := slack.New(cfg.BotToken, opts...)

	a := &app{
		cfg:      cfg,
		log:      log,
		api:      api,
		platform: platform.New(api, cfg.LookupRate, cfg.LookupBurst, log),
		ledger:   ledger.New(cfg.LedgerURL, ledger.WithTimeout(cfg.LedgerTimeout), ledger.WithLogger(log)),
	}

	var journal bot.Journal = bot.NopJournal
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.ApplyMigrations(ctx, pool, db.Migrations); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		a.pool = pool
		a.journal = repo.NewJournal(pool)
		journal = a.journal
		log.Info("journal enabled")
	}

	a.handler = bot.NewHandler(bot.Options{
		Ledger:   a.ledger,
		Platform: a.platform,
		Journal:  journal,
		Logger:   log,
		Location: cfg.Location(),
		Keyword:  cfg.GreetingKeyword,
	})
	return a, nil
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	a.log.Sync()
}
