package bank_test

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"

	"github.com/amirasaad/bankaccount/infra/eventstore"
	"github.com/amirasaad/bankaccount/infra/viewstore"
	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/amirasaad/bankaccount/pkg/money"
	"github.com/amirasaad/bankaccount/pkg/query"
	"github.com/amirasaad/bankaccount/pkg/service/bank"
	"github.com/amirasaad/bankaccount/pkg/service/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)

	exitVal := m.Run()
	os.Exit(exitVal)
}

// sequentialIDs hands out 1, 2, 3, ... for deterministic tests.
type sequentialIDs struct{ last int64 }

func (g *sequentialIDs) NextAccountID() account.AccountID {
	g.last++
	return account.AccountID(g.last)
}

func usd(t *testing.T, amount string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, currency.USD)
	require.NoError(t, err)
	return m
}

func newService(t *testing.T, queries ...cqrs.Query) (*bank.Service, *viewstore.Memory) {
	t.Helper()
	views := viewstore.NewMemory()
	queries = append(queries, query.NewProjector(views, query.NewUpdater(currency.USD, nil, nil)))
	svc := bank.New(
		eventstore.NewMemory(), views, rules.HappyPath{}, nil, &sequentialIDs{}, queries, nil)
	return svc, views
}

func open(t *testing.T, svc *bank.Service) account.AccountID {
	t.Helper()
	id := svc.NextAccountID()
	_, err := svc.Execute(context.Background(), id, account.OpenAccount{
		AccountID:      id,
		UserName:       "otis",
		MailingAddress: "12 Main St",
		Email:          "otis@example.org",
	})
	require.NoError(t, err)
	return id
}

func TestExecuteLifecycle(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	svc, _ := newService(t)
	id := open(t, svc)

	committed, err := svc.Execute(context.Background(), id,
		account.DepositAmount{Amount: usd(t, "10.00")})
	require.NoError(err)
	require.Len(committed, 1)
	assert.Equal(int64(2), committed[0].Sequence)

	committed, err = svc.Execute(context.Background(), id,
		account.WithdrawCash{Amount: usd(t, "9.23"), AtmID: "abc_123"})
	require.NoError(err)
	assert.Equal(int64(3), committed[0].Sequence)

	view, err := svc.View(context.Background(), id)
	require.NoError(err)
	assert.Equal("0.77 USD", view.Balance.String())
	assert.Len(view.Ledger, 2)
}

func TestExecuteRejectionCommitsNothing(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	svc, _ := newService(t)
	id := open(t, svc)

	_, err := svc.Execute(context.Background(), id,
		account.WithdrawCash{Amount: usd(t, "1.00"), AtmID: "abc_123"})
	var insufficient *account.InsufficientFundsError
	require.ErrorAs(err, &insufficient)

	// the stream still holds only the opening event
	committed, err := svc.Execute(context.Background(), id,
		account.DepositAmount{Amount: usd(t, "5.00")})
	require.NoError(err)
	assert.Equal(int64(2), committed[0].Sequence)
}

func TestExecuteSurfacesConflict(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	store := eventstore.NewMemory()
	views := viewstore.NewMemory()
	svc := bank.New(store, views, rules.HappyPath{}, nil, &sequentialIDs{},
		[]cqrs.Query{query.NewProjector(views, query.NewUpdater(currency.USD, nil, nil))}, nil)
	id := open(t, svc)

	// a stale writer expecting an empty stream loses to the opening commit
	_, err := store.Commit(context.Background(), account.AggregateType, id.String(), 0,
		[]cqrs.Event{account.BalanceDeposited{Amount: usd(t, "1.00")}}, cqrs.NewMetadata())
	require.ErrorIs(err, cqrs.ErrAggregateConflict)
}

func TestViewNotFound(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	svc, _ := newService(t)
	_, err := svc.View(context.Background(), 42)
	require.ErrorIs(err, cqrs.ErrNotFound)
}

type fragileQuery struct {
	calls atomic.Int64
	fail  error
	panic bool
}

func (q *fragileQuery) Dispatch(context.Context, string, []cqrs.EventEnvelope) error {
	q.calls.Add(1)
	if q.panic {
		panic("observer exploded")
	}
	return q.fail
}

func TestQueryFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	failing := &fragileQuery{fail: errors.New("projection offline")}
	panicking := &fragileQuery{panic: true}
	svc, _ := newService(t, failing, panicking)

	id := open(t, svc)

	// the commit succeeded and the projector behind the broken observers
	// still saw the events
	view, err := svc.View(context.Background(), id)
	require.NoError(err)
	assert.NotNil(view.AccountID)
	assert.Equal(int64(1), failing.calls.Load())
	assert.Equal(int64(1), panicking.calls.Load())
}
