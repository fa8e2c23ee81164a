package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	d, err := Parse(" 99.95 ")
	require.NoError(t, err)
	require.Equal(t, "99.95", d.String())

	_, err = Parse("ten")
	require.Error(t, err)

	require.Panics(t, func() { MustParse("") })
}

func TestNextMinimumAndProxyAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ceiling  string
		current  string
		inc      string
		expected string
	}{
		{name: "one_increment", ceiling: "150", current: "120", inc: "10", expected: "130"},
		{name: "capped_by_ceiling", ceiling: "125", current: "120", inc: "10", expected: "125"},
		{name: "fractional_increment", ceiling: "1000", current: "0.10", inc: "0.20", expected: "0.3"},
		{name: "ceiling_equals_next", ceiling: "130", current: "120", inc: "10", expected: "130"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ProxyAmount(MustParse(tc.ceiling), MustParse(tc.current), MustParse(tc.inc))
			require.True(t, MustParse(tc.expected).Equal(got), "got %s", got)
		})
	}

	// 0.1 + 0.2 is exact in decimal
	require.True(t, MustParse("0.3").Equal(NextMinimum(MustParse("0.1"), MustParse("0.2"))))
}

func TestIsPositive(t *testing.T) {
	t.Parallel()

	require.True(t, IsPositive(MustParse("0.01")))
	require.False(t, IsPositive(Zero))
	require.False(t, IsPositive(MustParse("-5")))
}

func TestFromAny(t *testing.T) {
	t.Parallel()

	d := MustParse("12.5")
	var nilDecimal *decimal.Decimal

	tests := []struct {
		name     string
		in       any
		expected string
		ok       bool
	}{
		{name: "decimal", in: d, expected: "12.5", ok: true},
		{name: "decimal_pointer", in: &d, expected: "12.5", ok: true},
		{name: "nil_decimal_pointer", in: nilDecimal, ok: false},
		{name: "int", in: 7, expected: "7", ok: true},
		{name: "int64", in: int64(-3), expected: "-3", ok: true},
		{name: "uint64", in: uint64(9), expected: "9", ok: true},
		{name: "float64", in: 1.25, expected: "1.25", ok: true},
		{name: "float32", in: float32(0.5), expected: "0.5", ok: true},
		{name: "json_number", in: json.Number("1500.25"), expected: "1500.25", ok: true},
		{name: "numeric_string", in: " 42.10 ", expected: "42.1", ok: true},
		{name: "word", in: "many", ok: false},
		{name: "bool", in: true, ok: false},
		{name: "nil", in: nil, ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := FromAny(tc.in)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.True(t, MustParse(tc.expected).Equal(got), "got %s", got)
			}
		})
	}
}
