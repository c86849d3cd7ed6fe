package query

import (
	"context"
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
)

// Repository persists account views outside the aggregate's transaction
// boundary. A missing view loads as (nil, 0, nil).
type Repository interface {
	Load(ctx context.Context, viewID string) (*AccountView, int64, error)
	Save(ctx context.Context, viewID string, version int64, view *AccountView) error
}

// Projector is the cqrs.Query that keeps the materialized account view
// current. A failure here is logged by the engine and never rolls back the
// already-committed events; the view lags until the next commit or a replay
// reconciles it.
type Projector struct {
	repo    Repository
	updater *Updater
}

// NewProjector wires a view repository to the fold.
func NewProjector(repo Repository, updater *Updater) *Projector {
	return &Projector{repo: repo, updater: updater}
}

// Dispatch folds a batch of committed events into the stored view and saves
// the result, versioned by the last applied sequence.
func (p *Projector) Dispatch(ctx context.Context, aggregateID string, events []cqrs.EventEnvelope) error {
	if len(events) == 0 {
		return nil
	}
	view, _, err := p.repo.Load(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("failed to load account view %s: %w", aggregateID, err)
	}
	if view == nil {
		view = NewAccountView(p.updater.display)
	}
	for _, env := range events {
		if err := p.updater.Update(view, env); err != nil {
			return fmt.Errorf("failed to update account view %s: %w", aggregateID, err)
		}
	}
	version := events[len(events)-1].Sequence
	if err := p.repo.Save(ctx, aggregateID, version, view); err != nil {
		return fmt.Errorf("failed to save account view %s: %w", aggregateID, err)
	}
	return nil
}

// Rebuild replays a full event history into a fresh view, used to reconcile
// a lagging or lost projection.
func (p *Projector) Rebuild(ctx context.Context, aggregateID string, history []cqrs.EventEnvelope) error {
	view := NewAccountView(p.updater.display)
	var version int64
	for _, env := range history {
		if err := p.updater.Update(view, env); err != nil {
			return fmt.Errorf("failed to rebuild account view %s: %w", aggregateID, err)
		}
		version = env.Sequence
	}
	if err := p.repo.Save(ctx, aggregateID, version, view); err != nil {
		return fmt.Errorf("failed to save rebuilt account view %s: %w", aggregateID, err)
	}
	return nil
}

var _ cqrs.Query = (*Projector)(nil)
