package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a non-negative currency amount or nothing. The zero value is
// absent, so an unresolved price can never be mistaken for R$ 0,00.
type Price struct {
	amount decimal.Decimal
	valid  bool
}

// Absent returns the missing price.
func Absent() Price {
	return Price{}
}

// PriceOf wraps a known amount. Negative amounts are absent.
func PriceOf(amount decimal.Decimal) Price {
	if amount.IsNegative() {
		return Absent()
	}
	return Price{amount: amount, valid: true}
}

// PriceFromNull converts a nullable column value.
func PriceFromNull(value decimal.NullDecimal) Price {
	if !value.Valid {
		return Absent()
	}
	return PriceOf(value.Decimal)
}

// IsAbsent reports whether no amount is known.
func (p Price) IsAbsent() bool {
	return !p.valid
}

// Amount returns the amount and whether it is present.
func (p Price) Amount() (decimal.Decimal, bool) {
	return p.amount, p.valid
}

// Null converts the price into a nullable column value.
func (p Price) Null() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: p.amount, Valid: p.valid}
}

// Less orders present amounts ascending and puts absent prices last.
func (p Price) Less(other Price) bool {
	switch {
	case !p.valid:
		return false
	case !other.valid:
		return true
	default:
		return p.amount.LessThan(other.amount)
	}
}

// Equal reports whether both prices are absent or hold the same amount.
func (p Price) Equal(other Price) bool {
	if p.valid != other.valid {
		return false
	}
	return !p.valid || p.amount.Equal(other.amount)
}

func (p Price) String() string {
	if !p.valid {
		return "absent"
	}
	return p.amount.StringFixed(2)
}

// MarshalJSON writes null for absent prices and defers to decimal otherwise.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte("null"), nil
	}
	return p.amount.MarshalJSON()
}

// UnmarshalJSON accepts null, a JSON number or display text such as
// "R$ 1.234,56"; text goes through ParsePrice.
func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = Absent()
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		*p = ParsePrice(raw)
		return nil
	}
	amount, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = PriceOf(amount)
	return nil
}
