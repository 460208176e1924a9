package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStripDecoration(t *testing.T) {
	assert.Equal(t, "1234.50", StripDecoration("$1,234.50"))
	assert.Equal(t, "1234.50", StripDecoration("1234.50"))

	once := StripDecoration("$12,000")
	assert.Equal(t, once, StripDecoration(once))
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$1,234.50", "1234.5", true},
		{"  42 ", "42", true},
		{"(10.25)", "-10.25", true},
		{"", "0", true},
		{"n/a", "0", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Parse(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}
