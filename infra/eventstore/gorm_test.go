package eventstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/bankaccount/infra/eventstore"
	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*eventstore.Gorm, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return eventstore.NewGorm(db, eventstore.AccountCodec{}), mock
}

func TestGormLoad(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"aggregate_type", "aggregate_id", "sequence", "event_type", "event_version", "payload", "metadata",
	}).AddRow(
		account.AggregateType, "7", int64(1), "account_opened", account.EventVersion,
		[]byte(`{"AccountOpened":{"account_id":7,"user_name":"otis","mailing_address":"12 Main St","email":"otis@example.org"}}`),
		[]byte(`{"correlation_id":"a6f21c36-2b38-43a2-a4ec-6a8b3a5ab4e6","received_at":"2026-08-28T10:00:00Z"}`),
	).AddRow(
		account.AggregateType, "7", int64(2), "balance_deposited", account.EventVersion,
		[]byte(`{"BalanceDeposited":{"amount":{"amount":"10.00","currency":"USD"}}}`),
		[]byte(`{}`),
	)
	mock.ExpectQuery(`SELECT (.+) FROM "events" WHERE aggregate_type = (.+) AND aggregate_id = (.+) ORDER BY sequence ASC`).
		WithArgs(account.AggregateType, "7").
		WillReturnRows(rows)

	envelopes, err := store.Load(context.Background(), account.AggregateType, "7")
	require.NoError(err)
	require.Len(envelopes, 2)

	opened, ok := envelopes[0].Event.(account.AccountOpened)
	require.True(ok)
	assert.Equal(account.AccountID(7), opened.AccountID)
	assert.Equal(int64(2), envelopes[1].Sequence)

	deposited, ok := envelopes[1].Event.(account.BalanceDeposited)
	require.True(ok)
	assert.Equal("10.00 USD", deposited.Amount.String())

	require.NoError(mock.ExpectationsWereMet())
}

func TestGormLoadRejectsCorruptPayload(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"aggregate_type", "aggregate_id", "sequence", "event_type", "event_version", "payload", "metadata",
	}).AddRow(
		account.AggregateType, "7", int64(1), "account_opened", account.EventVersion,
		[]byte(`not json`), []byte(`{}`),
	)
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).WillReturnRows(rows)

	_, err := store.Load(context.Background(), account.AggregateType, "7")
	require.Error(err)
}

func TestGormCommit(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "events" (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	committed, err := store.Commit(context.Background(), account.AggregateType, "7", 3, []cqrs.Event{
		account.BalanceDeposited{Amount: usd(t, "10.00")},
		account.CashWithdrawal{Amount: usd(t, "9.23")},
	}, cqrs.NewMetadata())
	require.NoError(err)
	require.Len(committed, 2)
	// sequences continue from the expected version
	assert.Equal(int64(4), committed[0].Sequence)
	assert.Equal(int64(5), committed[1].Sequence)

	require.NoError(mock.ExpectationsWereMet())
}

func TestGormCommitConflictOnDuplicateSequence(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "events" (.+)`).
		WillReturnError(gorm.ErrDuplicatedKey)

	_, err := store.Commit(context.Background(), account.AggregateType, "7", 0, []cqrs.Event{
		account.AccountOpened{AccountID: 7, UserName: "otis", MailingAddress: "12 Main St", Email: "otis@example.org"},
	}, cqrs.NewMetadata())
	require.ErrorIs(err, cqrs.ErrAggregateConflict)
}

func TestGormCommitSurfacesOtherErrors(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO "events" (.+)`).
		WillReturnError(errors.New("connection reset"))

	_, err := store.Commit(context.Background(), account.AggregateType, "7", 0, []cqrs.Event{
		account.AccountOpened{AccountID: 7, UserName: "otis", MailingAddress: "12 Main St", Email: "otis@example.org"},
	}, cqrs.NewMetadata())
	require.Error(err)
	require.NotErrorIs(err, cqrs.ErrAggregateConflict)
}

func TestGormCommitEmptyBatch(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	store, _ := newMockStore(t)
	committed, err := store.Commit(context.Background(), account.AggregateType, "7", 0, nil, cqrs.NewMetadata())
	require.NoError(err)
	require.Empty(committed)
}
