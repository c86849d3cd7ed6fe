package viewstore_test

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"testing"

	"github.com/amirasaad/bankaccount/infra/viewstore"
	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/amirasaad/bankaccount/pkg/money"
	"github.com/amirasaad/bankaccount/pkg/query"
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

func sampleView(t *testing.T) *query.AccountView {
	t.Helper()
	view := query.NewAccountView(currency.USD)
	id := account.AccountID(7)
	view.AccountID = &id
	balance, err := money.NewFromString("75.27", currency.USD)
	require.NoError(t, err)
	view.Balance = balance
	view.WrittenChecks = []account.CheckNumber{873487}
	view.Ledger = []query.LedgerEntry{{Description: "deposit", Amount: balance}}
	return view
}

func TestMemoryMissingViewIsNotAnError(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	repo := viewstore.NewMemory()
	view, version, err := repo.Load(context.Background(), "7")
	require.NoError(err)
	require.Nil(view)
	require.Zero(version)
}

func TestMemorySaveAndLoad(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	repo := viewstore.NewMemory()
	require.NoError(repo.Save(context.Background(), "7", 5, sampleView(t)))

	loaded, version, err := repo.Load(context.Background(), "7")
	require.NoError(err)
	require.NotNil(loaded)
	assert.Equal(int64(5), version)
	assert.Equal("75.27 USD", loaded.Balance.String())
	assert.Equal([]account.CheckNumber{873487}, loaded.WrittenChecks)
}

func TestMemoryLoadReturnsIsolatedCopies(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	repo := viewstore.NewMemory()
	require.NoError(repo.Save(context.Background(), "7", 5, sampleView(t)))

	first, _, err := repo.Load(context.Background(), "7")
	require.NoError(err)
	first.WrittenChecks = append(first.WrittenChecks, 999999)

	second, _, err := repo.Load(context.Background(), "7")
	require.NoError(err)
	assert.Len(second.WrittenChecks, 1, "mutating a loaded view must not leak into the store")
}
