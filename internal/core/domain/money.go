package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/accounted-hq/accounted-app/internal/apperrors"
)

const (
	// AmountScale is the fixed fractional precision of every booked amount.
	AmountScale = 4
	// RateScale is the fixed fractional precision of exchange rates.
	RateScale = 6
	// maxIntegerDigits bounds the integer part of an Amount.
	maxIntegerDigits = 18
)

// Amount is a fixed-precision decimal: up to 18 integer digits and exactly 4
// fractional digits. Every arithmetic result is rescaled with banker's
// rounding before it is observable.
type Amount struct {
	value decimal.Decimal
}

// ZeroAmount is the additive identity at scale 4.
var ZeroAmount = Amount{value: decimal.Zero.Round(AmountScale)}

// NewAmount rescales d to 4 fractional digits (round-half-to-even) and
// rejects values whose integer part exceeds 18 digits.
func NewAmount(d decimal.Decimal) (Amount, error) {
	scaled := d.RoundBank(AmountScale)
	intDigits := len(scaled.Abs().Truncate(0).String())
	if intDigits > maxIntegerDigits {
		return Amount{}, apperrors.NewValidationFailed(
			fmt.Sprintf("amount %s exceeds %d integer digits", scaled.String(), maxIntegerDigits), nil)
	}
	return Amount{value: scaled}, nil
}

// NewAmountFromString parses a decimal string into an Amount.
func NewAmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, apperrors.NewValidationFailed(fmt.Sprintf("invalid amount %q", s), nil)
	}
	return NewAmount(d)
}

// MustAmount parses a decimal string and panics on failure. Test helper and
// literal constructor only.
func MustAmount(s string) Amount {
	a, err := NewAmountFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the underlying decimal value at scale 4.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

func (a Amount) Add(b Amount) Amount {
	return Amount{value: a.value.Add(b.value).RoundBank(AmountScale)}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{value: a.value.Sub(b.value).RoundBank(AmountScale)}
}

// MulRate multiplies by an exchange rate and rescales to 4 digits.
func (a Amount) MulRate(rate decimal.Decimal) Amount {
	return Amount{value: a.value.Mul(rate).RoundBank(AmountScale)}
}

func (a Amount) Neg() Amount {
	return Amount{value: a.value.Neg()}
}

func (a Amount) Abs() Amount {
	return Amount{value: a.value.Abs()}
}

func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

func (a Amount) IsNegative() bool {
	return a.value.IsNegative()
}

func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

func (a Amount) Equal(b Amount) bool {
	return a.value.Equal(b.value)
}

func (a Amount) Cmp(b Amount) int {
	return a.value.Cmp(b.value)
}

// String renders the amount with exactly 4 fractional digits. This rendering
// participates in the hash serialization and must never change.
func (a Amount) String() string {
	return a.value.StringFixed(AmountScale)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := NewAmountFromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Money couples an Amount with an ISO-4217 currency code. Arithmetic is
// defined only between same-currency values; mixing currencies is a hard
// error, never a silent promotion.
type Money struct {
	Amount   Amount `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney validates the currency code shape (three uppercase letters).
func NewMoney(amount Amount, currency string) (Money, error) {
	if !ValidCurrencyCode(currency) {
		return Money{}, apperrors.NewValidationFailed(fmt.Sprintf("invalid currency code %q", currency), nil)
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney builds Money from a decimal string and currency, panicking on
// failure. Test helper and literal constructor only.
func MustMoney(amount, currency string) Money {
	m, err := NewMoney(MustAmount(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney is the zero value in the given currency.
func ZeroMoney(currency string) Money {
	return Money{Amount: ZeroAmount, Currency: currency}
}

// ValidCurrencyCode reports whether code is three uppercase ASCII letters.
func ValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, currencyMismatch(m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, currencyMismatch(m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// String renders "1500.0000 EUR".
func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}

func currencyMismatch(a, b string) *apperrors.AppError {
	return apperrors.NewValidationFailed(
		fmt.Sprintf("currency mismatch: %s vs %s", a, b),
		map[string]any{"left": a, "right": b},
	)
}
