// internal/intake/prompt/parsers_test.go
package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected int
		ok       bool
	}{
		{name: "plain figure", reply: "75000", expected: 75_000, ok: true},
		{name: "dollar sign and commas", reply: "$75,000", expected: 75_000, ok: true},
		{name: "k suffix", reply: "75k", expected: 75_000, ok: true},
		{name: "fractional m suffix", reply: "1.5m", expected: 1_500_000, ok: true},
		{name: "negative rejected", reply: "-100", ok: false},
		{name: "words rejected", reply: "a lot", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMoney(tt.reply)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestParseAmount_IncomeBuckets(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected int
	}{
		{name: "suggestion button en dash", reply: "$75K–$150K", expected: 112_500},
		{name: "plain range", reply: "75k-150k", expected: 112_500},
		{name: "range with to", reply: "75k to 150k", expected: 112_500},
		{name: "under bucket", reply: "Under $75K", expected: 50_000},
		{name: "over bucket", reply: "Over $250K", expected: 300_000},
		{name: "exact figure fallback", reply: "$92,000", expected: 92_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAmount(tt.reply, incomeBuckets)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseExactDigits(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected string
		ok       bool
	}{
		{name: "formatted SSN", reply: "123-45-6789", expected: "123456789", ok: true},
		{name: "formatted EIN", reply: "12-3456789", expected: "123456789", ok: true},
		{name: "bare digits", reply: "123456789", expected: "123456789", ok: true},
		{name: "digits in sentence", reply: "it's 123 45 6789", expected: "123456789", ok: true},
		{name: "eight digits", reply: "12345678", ok: false},
		{name: "ten digits", reply: "1234567890", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseExactDigits(tt.reply, 9)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected string
		ok       bool
	}{
		{name: "full name", reply: "Delaware", expected: "DE", ok: true},
		{name: "uppercase code", reply: "DE", expected: "DE", ok: true},
		{name: "lowercase code", reply: "tx", expected: "TX", ok: true},
		{name: "name in sentence", reply: "we incorporated in New York", expected: "NY", ok: true},
		{name: "not a state", reply: "Narnia", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseState(tt.reply)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		reply    string
		expected string
	}{
		{reply: "LLC", expected: "LLC"},
		{reply: "we're a limited liability company", expected: "LLC"},
		{reply: "Corporation", expected: "Corporation"},
		{reply: "S-Corp", expected: "S-Corporation"},
		{reply: "sole proprietorship", expected: "Sole Proprietorship"},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, ok := parseEntityType(tt.reply)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, ok := parseEntityType("no idea")
	assert.False(t, ok)
}

func TestParseOwnershipPct_SoleOwner(t *testing.T) {
	p := businessProfile()
	assert.NoError(t, parseOwnershipPct(p, "I'm the sole owner"))
	assert.Equal(t, 100, p.BusinessInfo.OwnershipPercentage)
}

func TestParseSmallInt_Bounds(t *testing.T) {
	_, ok := parseSmallInt("150%", 1, 100)
	assert.False(t, ok)

	got, ok := parseSmallInt("about 25 percent", 1, 100)
	assert.True(t, ok)
	assert.Equal(t, 25, got)
}
