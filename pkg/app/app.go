// Package app wires the aggregate engine from the configured collaborators.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/amirasaad/bankaccount/infra"
	"github.com/amirasaad/bankaccount/infra/eventbus"
	"github.com/amirasaad/bankaccount/infra/eventstore"
	"github.com/amirasaad/bankaccount/infra/viewstore"
	"github.com/amirasaad/bankaccount/internal/fixtures/rates"
	"github.com/amirasaad/bankaccount/pkg/config"
	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/amirasaad/bankaccount/pkg/id"
	"github.com/amirasaad/bankaccount/pkg/query"
	"github.com/amirasaad/bankaccount/pkg/service/bank"
	"github.com/amirasaad/bankaccount/pkg/service/rules"
	"github.com/redis/go-redis/v9"
)

// App holds the wired service and everything that needs closing on
// shutdown.
type App struct {
	Config  *config.App
	Service *bank.Service
	Logger  *slog.Logger

	closers []io.Closer
}

// New builds the application: rate table, id generator, stores, queries,
// and the engine. With no database URL configured it runs fully in-memory.
func New(cfg *config.App, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	table, err := rates.Load(cfg.Exchange.RatesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}

	display, err := currency.Parse(cfg.View.DisplayCurrency)
	if err != nil {
		return nil, fmt.Errorf("invalid display currency: %w", err)
	}

	ids, err := id.NewSnowflake(cfg.SnowflakeNode)
	if err != nil {
		return nil, err
	}

	var (
		store cqrs.EventStore
		views query.Repository
	)
	if cfg.DB.Url != "" {
		db, err := infra.NewDBConnection(cfg.DB.Url, cfg.Env)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := infra.RunMigrations(cfg.DB.Url, cfg.DB.MigrationsPath); err != nil {
			return nil, err
		}
		store = eventstore.NewGorm(db, eventstore.AccountCodec{})
		views = viewstore.NewGorm(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		store = eventstore.NewMemory()
		views = viewstore.NewMemory()
	}

	if cfg.Redis.Enabled {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		views = viewstore.NewRedisCache(views, opt, cfg.Redis.KeyPrefix, cfg.Redis.TTL, logger)
	}

	a := &App{Config: cfg, Logger: logger}

	updater := query.NewUpdater(display, table, logger)
	queries := []cqrs.Query{
		query.NewTracing(logger),
		query.NewProjector(views, updater),
	}
	if cfg.Kafka.Enabled {
		publisher, err := eventbus.NewKafkaPublisher(
			cfg.Kafka.Brokers, cfg.Kafka.Topic, eventstore.AccountCodec{}, logger)
		if err != nil {
			return nil, err
		}
		queries = append(queries, publisher)
		a.closers = append(a.closers, publisher)
	}

	a.Service = bank.New(store, views, rules.HappyPath{}, table, ids, queries, logger)
	return a, nil
}

// Close releases resources held by the application.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
