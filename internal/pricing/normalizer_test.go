package pricing_test

import (
	"encoding/json"
	"testing"

	"github.com/rohmanhakim/product-aggregator/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got.String())
}

func TestParseText(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"$1,299.99", "1299.99", true},
		{"₹ 4,500", "4500", true},
		{"12", "12", true},
		{"", "0", true},
		{"Free", "0", true},
		{"1.2.3", "0", false},
		{"-5.00", "5", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := pricing.ParseText(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			if ok {
				assertDecimal(t, tt.want, got)
			}
		})
	}
}

func TestRawPrice_UnmarshalJSON(t *testing.T) {
	type payload struct {
		Price pricing.RawPrice `json:"price"`
	}

	tests := []struct {
		name    string
		json    string
		number  bool
		absent  bool
		extract string
		ok      bool
	}{
		{"number", `{"price": 109.95}`, true, false, "109.95", true},
		{"integer", `{"price": 12}`, true, false, "12", true},
		{"string", `{"price": "$1,299.99"}`, false, false, "1299.99", true},
		{"null", `{"price": null}`, false, true, "0", true},
		{"missing", `{}`, false, true, "0", true},
		{"object", `{"price": {"value": 1}}`, false, false, "0", false},
		{"bool", `{"price": true}`, false, false, "0", false},
		{"negative", `{"price": -3}`, true, false, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			require.NoError(t, json.Unmarshal([]byte(tt.json), &p))
			assert.Equal(t, tt.number, p.Price.IsNumber())
			assert.Equal(t, tt.absent, p.Price.IsAbsent())

			got, ok := pricing.Extract(pricing.RawPrice{}, p.Price)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assertDecimal(t, tt.extract, got)
			}
		})
	}
}

func TestExtract_Precedence(t *testing.T) {
	// numeric extracted value beats the display string
	got, ok := pricing.Extract(pricing.NumberPrice(dec("19.99")), pricing.TextPrice("$25.00"))
	require.True(t, ok)
	assertDecimal(t, "19.99", got)

	// string extracted value is ignored in favour of raw
	got, ok = pricing.Extract(pricing.TextPrice("7"), pricing.TextPrice("$25.00"))
	require.True(t, ok)
	assertDecimal(t, "25", got)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := pricing.DefaultNormalizer()

	tests := []struct {
		name      string
		extracted pricing.RawPrice
		raw       pricing.RawPrice
		want      string
		ok        bool
	}{
		{"numeric price", pricing.RawPrice{}, pricing.NumberPrice(dec("109.95")), "9125.85", true},
		{"display string", pricing.RawPrice{}, pricing.TextPrice("$1,299.99"), "107899.17", true},
		{"extracted wins", pricing.NumberPrice(dec("10")), pricing.TextPrice("$99"), "830", true},
		{"absent is zero", pricing.RawPrice{}, pricing.RawPrice{}, "0", true},
		{"unparseable dropped", pricing.RawPrice{}, pricing.TextPrice("1.2.3"), "0", false},
		{"negative dropped", pricing.RawPrice{}, pricing.NumberPrice(dec("-1")), "0", false},
		{"rounds half away from zero", pricing.RawPrice{}, pricing.NumberPrice(dec("1.005")), "83.42", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Normalize(tt.extracted, tt.raw)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assertDecimal(t, tt.want, got)
				assert.False(t, got.IsNegative())
				assert.LessOrEqual(t, -got.Exponent(), int32(2))
			}
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := pricing.NewNormalizer(dec("83"), "USD", "INR")
	raw := pricing.TextPrice("$549.00")

	first, ok := n.Normalize(pricing.RawPrice{}, raw)
	require.True(t, ok)
	second, ok := n.Normalize(pricing.RawPrice{}, raw)
	require.True(t, ok)

	assert.True(t, first.Equal(second))
	assertDecimal(t, "45567", first)
}

func TestNormalizer_Accessors(t *testing.T) {
	n := pricing.DefaultNormalizer()
	assertDecimal(t, "83", n.Rate())
	assert.Equal(t, "USD", n.SourceCurrency())
	assert.Equal(t, "INR", n.DisplayCurrency())
}
