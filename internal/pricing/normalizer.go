package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultConversionRate  = 83.0
	DefaultSourceCurrency  = "USD"
	DefaultDisplayCurrency = "INR"
)

// Normalizer turns provider prices into display-currency amounts using a
// fixed conversion rate. It holds no mutable state and is safe to share.
type Normalizer struct {
	rate            decimal.Decimal
	sourceCurrency  string
	displayCurrency string
}

func NewNormalizer(rate decimal.Decimal, sourceCurrency, displayCurrency string) Normalizer {
	return Normalizer{
		rate:            rate,
		sourceCurrency:  sourceCurrency,
		displayCurrency: displayCurrency,
	}
}

func DefaultNormalizer() Normalizer {
	return NewNormalizer(
		decimal.NewFromFloat(DefaultConversionRate),
		DefaultSourceCurrency,
		DefaultDisplayCurrency,
	)
}

func (n Normalizer) Rate() decimal.Decimal {
	return n.rate
}

func (n Normalizer) SourceCurrency() string {
	return n.sourceCurrency
}

func (n Normalizer) DisplayCurrency() string {
	return n.displayCurrency
}

// Convert applies the conversion rate and rounds half away from zero to
// two fractional digits.
func (n Normalizer) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(n.rate).Round(2)
}

// Normalize resolves the price of one provider record. A numeric extracted
// value wins; otherwise raw is used, with display strings reduced to their
// digits and decimal points. Absent or empty prices count as 0.
// ok is false when the price cannot be parsed or is negative; the caller
// drops the record.
func (n Normalizer) Normalize(extracted RawPrice, raw RawPrice) (price decimal.Decimal, ok bool) {
	amount, ok := Extract(extracted, raw)
	if !ok {
		return decimal.Zero, false
	}
	return n.Convert(amount), true
}

// Extract applies the precedence rules of Normalize without converting.
func Extract(extracted RawPrice, raw RawPrice) (decimal.Decimal, bool) {
	var amount decimal.Decimal
	switch {
	case extracted.kind == kindNumber:
		amount = extracted.number
	case raw.kind == kindNumber:
		amount = raw.number
	case raw.kind == kindString:
		parsed, ok := ParseText(raw.text)
		if !ok {
			return decimal.Zero, false
		}
		amount = parsed
	case raw.kind == kindAbsent:
		amount = decimal.Zero
	default:
		return decimal.Zero, false
	}

	if amount.IsNegative() {
		return decimal.Zero, false
	}
	return amount, true
}

// ParseText keeps only ASCII digits and '.' from s and parses the result.
// An empty result is 0; "1.2.3" and similar are rejected.
func ParseText(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
