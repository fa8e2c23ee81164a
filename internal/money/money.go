// Package money holds the decimal helpers shared by bidding and rule scoring.
// Amounts never pass through float64 on their way to a comparison.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the additive identity, kept here so callers do not depend on decimal directly.
var Zero = decimal.Zero

// Parse reads an amount such as "110" or "99.95".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NextMinimum is the lowest amount a new bid may carry.
func NextMinimum(current, increment decimal.Decimal) decimal.Decimal {
	return current.Add(increment)
}

// ProxyAmount is what an auto-bid with the given ceiling offers against current.
func ProxyAmount(ceiling, current, increment decimal.Decimal) decimal.Decimal {
	return decimal.Min(ceiling, NextMinimum(current, increment))
}

// IsPositive reports d > 0.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

// FromAny converts a fact value into a decimal. It accepts the numeric shapes
// produced by JSON, YAML and Go callers, plus numeric strings.
func FromAny(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint32:
		return decimal.NewFromUint64(uint64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
