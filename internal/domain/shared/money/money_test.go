package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/domain/shared/money"
)

func TestNewValidatesCurrency(t *testing.T) {
	_, err := money.New(100, "")
	require.ErrorIs(t, err, money.ErrInvalidCurrency)

	m, err := money.New(100, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
}

func TestAddAndSubRequireSameCurrency(t *testing.T) {
	usd := money.Must(500, "USD")
	eur := money.Must(500, "EUR")

	_, err := usd.Add(eur)
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)

	sum, err := usd.Add(money.Must(250, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(750), sum.Amount)

	diff, err := usd.Sub(money.Must(600, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(-100), diff.Amount)
}

func TestPercentOfTruncates(t *testing.T) {
	m := money.Must(999, "USD")
	assert.Equal(t, int64(99), m.PercentOf(10).Amount)
	assert.Equal(t, int64(0), m.PercentOf(0).Amount)
	assert.Equal(t, int64(999), m.PercentOf(100).Amount)
}

func TestPoints(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{103500, 10},
		{57500, 5},
		{9999, 0},
		{10000, 1},
		{0, 0},
		{-500, 0},
	}
	for _, tc := range cases {
		m := money.Money{Amount: tc.amount, Currency: "USD"}
		assert.Equal(t, tc.want, m.Points(), "amount %d", tc.amount)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "575.00 USD", money.Must(57500, "USD").String())
	assert.Equal(t, "0.09 USD", money.Must(9, "USD").String())
}
