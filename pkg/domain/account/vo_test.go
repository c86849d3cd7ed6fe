package account_test

import (
	"testing"

	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	id, err := account.ParseAccountID("1916547904378634240")
	require.NoError(err)
	assert.Equal("1916547904378634240", id.String())

	_, err = account.ParseAccountID("not-a-number")
	assert.Error(err)
}

func TestNewMailingAddress(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	_, err := account.NewMailingAddress("12 Main St, Springfield")
	assert.NoError(err)

	_, err = account.NewMailingAddress("")
	assert.Error(err)
}

func TestNewEmailAddress(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	_, err := account.NewEmailAddress("otis@example.org")
	assert.NoError(err)

	for _, raw := range []string{"", "otis", "otis@"} {
		_, err := account.NewEmailAddress(raw)
		assert.Error(err, "raw=%q", raw)
	}
}
