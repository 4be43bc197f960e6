package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type amountKind int

const (
	amountNone amountKind = iota
	amountText
	amountPair
	amountNumber
)

// Amount is a price as it arrived from a source: pre-formatted text
// ("¥2,500", "$17.50"), a {value, currency} pair, or a bare number in yen.
type Amount struct {
	kind     amountKind
	text     string
	value    float64
	currency string
}

// TextAmount wraps a pre-formatted price string.
func TextAmount(text string) Amount {
	return Amount{kind: amountText, text: text}
}

// PairAmount wraps a currency-tagged value.
func PairAmount(value float64, currency string) Amount {
	return Amount{kind: amountPair, value: value, currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// YenAmount wraps a bare number, which is always yen.
func YenAmount(value float64) Amount {
	return Amount{kind: amountNumber, value: value}
}

// IsZero reports whether the amount carries nothing.
func (a Amount) IsZero() bool {
	return a.kind == amountNone
}

// Text returns the pre-formatted string, if this is a text amount.
func (a Amount) Text() (string, bool) {
	return a.text, a.kind == amountText
}

// Pair returns value and currency, if this is a pair amount.
func (a Amount) Pair() (float64, string, bool) {
	return a.value, a.currency, a.kind == amountPair
}

// Number returns the yen value, if this is a bare number.
func (a Amount) Number() (float64, bool) {
	return a.value, a.kind == amountNumber
}

func (a Amount) String() string {
	switch a.kind {
	case amountText:
		return a.text
	case amountPair:
		return fmt.Sprintf("%g %s", a.value, a.currency)
	case amountNumber:
		return fmt.Sprintf("%g", a.value)
	default:
		return ""
	}
}

type amountPairJSON struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// MarshalJSON emits the shape the amount arrived in.
func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case amountText:
		return json.Marshal(a.text)
	case amountPair:
		return json.Marshal(amountPairJSON{Value: a.value, Currency: a.currency})
	case amountNumber:
		return json.Marshal(a.value)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, an object with value and currency, or a number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = TextAmount(text)
	case '{':
		var pair amountPairJSON
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		*a = PairAmount(pair.Value, pair.Currency)
	default:
		var value float64
		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("price amount: %w", err)
		}
		*a = YenAmount(value)
	}
	return nil
}

// MarshalYAML renders amounts as their JSON-equivalent value.
func (a Amount) MarshalYAML() (any, error) {
	switch a.kind {
	case amountText:
		return a.text, nil
	case amountPair:
		return map[string]any{"value": a.value, "currency": a.currency}, nil
	case amountNumber:
		return a.value, nil
	default:
		return nil, nil
	}
}
