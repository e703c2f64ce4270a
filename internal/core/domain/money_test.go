package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmountRescalesWithBankersRounding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already at scale", "1500.00", "1500.0000"},
		{"half rounds to even down", "1.00005", "1.0000"},
		{"half rounds to even up", "1.00015", "1.0002"},
		{"plain round up", "1.00016", "1.0002"},
		{"plain round down", "1.00014", "1.0001"},
		{"negative half to even", "-1.00005", "-1.0000"},
		{"zero", "0", "0.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAmountFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.String())
		})
	}
}

func TestNewAmountRejectsTooManyIntegerDigits(t *testing.T) {
	_, err := NewAmountFromString("1234567890123456789.00") // 19 integer digits
	assert.Error(t, err)

	a, err := NewAmountFromString("123456789012345678.00") // 18 integer digits
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678.0000", a.String())
}

func TestNewAmountRejectsGarbage(t *testing.T) {
	_, err := NewAmountFromString("not-a-number")
	assert.Error(t, err)
}

func TestAmountArithmeticStaysAtScaleFour(t *testing.T) {
	a := MustAmount("10.1111")
	b := MustAmount("0.8889")

	assert.Equal(t, "11.0000", a.Add(b).String())
	assert.Equal(t, "9.2222", a.Sub(b).String())
}

func TestAmountMulRateRoundsBank(t *testing.T) {
	a := MustAmount("100.00")
	rate := decimal.RequireFromString("1.084500")

	assert.Equal(t, "108.4500", a.MulRate(rate).String())

	// 0.0625 * 1.0001 = 0.06250625 -> banker's at scale 4
	b := MustAmount("0.0625")
	r := decimal.RequireFromString("1.000100")
	assert.Equal(t, "0.0625", b.MulRate(r).String())
}

func TestMoneySameCurrencyArithmetic(t *testing.T) {
	a := MustMoney("100.00", "EUR")
	b := MustMoney("50.50", "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "150.5000 EUR", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "49.5000 EUR", diff.String())
}

func TestMoneyCrossCurrencyIsHardError(t *testing.T) {
	eur := MustMoney("100.00", "EUR")
	usd := MustMoney("100.00", "USD")

	_, err := eur.Add(usd)
	assert.Error(t, err)

	_, err = eur.Sub(usd)
	assert.Error(t, err)
}

func TestNewMoneyRejectsBadCurrencyCodes(t *testing.T) {
	for _, code := range []string{"", "EU", "EURO", "eur", "E1R"} {
		_, err := NewMoney(MustAmount("1.00"), code)
		assert.Error(t, err, "code %q should be rejected", code)
	}

	_, err := NewMoney(MustAmount("1.00"), "EUR")
	assert.NoError(t, err)
}
