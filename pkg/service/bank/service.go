// Package bank is the aggregate engine tying the account state machine to
// its collaborators: it loads state by replaying committed events, asks the
// state machine to decide, commits under optimistic concurrency, and fans
// the committed batch out to the registered queries.
package bank

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/amirasaad/bankaccount/pkg/query"
)

// IDGenerator produces globally unique, time-ordered identifiers for new
// accounts. It is injected so tests can use deterministic ids.
type IDGenerator interface {
	NextAccountID() account.AccountID
}

// Service executes account commands and serves the read projection.
type Service struct {
	store   cqrs.EventStore
	views   query.Repository
	rules   account.RuleService
	convert account.Converter
	ids     IDGenerator
	queries []cqrs.Query
	logger  *slog.Logger
}

// New wires the engine. queries are invoked in the given order after every
// successful commit.
func New(
	store cqrs.EventStore,
	views query.Repository,
	rules account.RuleService,
	convert account.Converter,
	ids IDGenerator,
	queries []cqrs.Query,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		views:   views,
		rules:   rules,
		convert: convert,
		ids:     ids,
		queries: queries,
		logger:  logger,
	}
}

// NextAccountID reserves a fresh account id for an OpenAccount command.
func (s *Service) NextAccountID() account.AccountID {
	return s.ids.NextAccountID()
}

// Execute runs one command against the account: replay, decide, commit,
// dispatch. Validation failures return a typed error and commit nothing. A
// cqrs.ErrAggregateConflict means a concurrent writer won; the caller may
// retry against the now-current state.
func (s *Service) Execute(
	ctx context.Context, id account.AccountID, cmd account.Command,
) ([]cqrs.EventEnvelope, error) {
	aggregateID := id.String()
	history, err := s.store.Load(ctx, account.AggregateType, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", aggregateID, err)
	}

	agg := account.New(s.convert, s.logger)
	expectedVersion := replay(agg, history, s.logger)

	events, err := agg.Handle(ctx, cmd, s.rules)
	if err != nil {
		return nil, err
	}

	toCommit := make([]cqrs.Event, len(events))
	for i, ev := range events {
		toCommit[i] = ev
	}
	committed, err := s.store.Commit(
		ctx, account.AggregateType, aggregateID, expectedVersion, toCommit, cqrs.NewMetadata())
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, aggregateID, committed)
	return committed, nil
}

// View serves the materialized account view, or cqrs.ErrNotFound when the
// projection has never seen the account.
func (s *Service) View(ctx context.Context, id account.AccountID) (*query.AccountView, error) {
	view, _, err := s.views.Load(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load account view %s: %w", id, err)
	}
	if view == nil {
		return nil, fmt.Errorf("account view %s: %w", id, cqrs.ErrNotFound)
	}
	return view, nil
}

// dispatch invokes every registered query with the committed batch.
// Observers are independent: a failure (or panic) in one is logged and never
// blocks another's invocation, since the authoritative events are already
// durable.
func (s *Service) dispatch(ctx context.Context, aggregateID string, events []cqrs.EventEnvelope) {
	for _, q := range s.queries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("query panicked",
						"aggregate_id", aggregateID, "query", fmt.Sprintf("%T", q), "panic", r)
				}
			}()
			if err := q.Dispatch(ctx, aggregateID, events); err != nil {
				s.logger.Error("query failed",
					"aggregate_id", aggregateID, "query", fmt.Sprintf("%T", q), "error", err)
			}
		}()
	}
}

// replay folds a committed history back into the aggregate and returns the
// sequence of the last observed event, used as the expected version for the
// next commit.
func replay(agg *account.Account, history []cqrs.EventEnvelope, logger *slog.Logger) int64 {
	var version int64
	for _, env := range history {
		ev, ok := env.Event.(account.Event)
		if !ok {
			logger.Warn("skipping foreign event in account stream",
				"aggregate_id", env.AggregateID, "event_type", env.Event.EventType())
			continue
		}
		agg.Apply(ev)
		version = env.Sequence
	}
	return version
}
