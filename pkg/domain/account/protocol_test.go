package account_test

import (
	"testing"

	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalEventEnvelopeShape(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	raw, err := account.MarshalEvent(account.CashWithdrawal{Amount: usd(t, "9.23")})
	require.NoError(err)
	// persisted payloads are keyed by the variant name so consumers can
	// dispatch without a separate discriminator field
	assert.JSONEq(`{"CashWithdrawal":{"amount":{"amount":"9.23","currency":"USD"}}}`, string(raw))
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()

	events := []account.Event{
		account.AccountOpened{AccountID: 7, UserName: "otis", MailingAddress: "12 Main St", Email: "otis@example.org"},
		account.BalanceDeposited{Amount: usd(t, "10.00")},
		account.CashWithdrawal{Amount: usd(t, "9.23")},
		account.CheckWithdrawal{CheckNr: 873487, Amount: usd(t, "25.50")},
		account.MailingAddressUpdated{NewAddress: "99 Elm St"},
		account.EmailUpdated{NewEmail: "otis@elsewhere.org"},
	}
	for _, ev := range events {
		t.Run(ev.EventType(), func(t *testing.T) {
			t.Parallel()
			raw, err := account.MarshalEvent(ev)
			require.NoError(t, err)
			back, err := account.UnmarshalEvent(ev.EventType(), raw)
			require.NoError(t, err)
			assert.Equal(t, ev.EventType(), back.EventType())
			assert.Equal(t, account.EventVersion, back.EventVersion())
		})
	}
}

func TestUnmarshalEventRejectsUnknownType(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	_, err := account.UnmarshalEvent("account_frozen", []byte(`{}`))
	require.Error(err)
}

func TestUnmarshalEventRejectsWrongVariantKey(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	_, err := account.UnmarshalEvent("balance_deposited", []byte(`{"CashWithdrawal":{}}`))
	require.Error(err)
}
