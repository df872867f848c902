package pricing

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type rawKind int

const (
	kindAbsent rawKind = iota
	kindNumber
	kindString
	kindInvalid
)

// RawPrice captures a provider price field exactly as it arrived: a JSON
// number, a display string such as "$1,299.99", null/absent, or something
// unusable. Decoding never fails, so one odd record cannot break the payload.
type RawPrice struct {
	kind   rawKind
	number decimal.Decimal
	text   string
}

func NumberPrice(d decimal.Decimal) RawPrice {
	return RawPrice{kind: kindNumber, number: d}
}

func TextPrice(s string) RawPrice {
	return RawPrice{kind: kindString, text: s}
}

func (p RawPrice) IsNumber() bool {
	return p.kind == kindNumber
}

func (p RawPrice) IsAbsent() bool {
	return p.kind == kindAbsent
}

func (p *RawPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = RawPrice{kind: kindAbsent}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*p = RawPrice{kind: kindInvalid}
			return nil
		}
		*p = TextPrice(s)
	default:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			*p = RawPrice{kind: kindInvalid}
			return nil
		}
		*p = NumberPrice(d)
	}
	return nil
}
