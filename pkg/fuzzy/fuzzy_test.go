package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"John", "jon", 1},
		{"José", "jose", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LevenshteinDistance(c.a, c.b), "%q vs %q", c.a, c.b)
	}
}

func TestMatch(t *testing.T) {
	assert.True(t, Match("john", "John Smith <john@example.com>"))
	assert.True(t, Match("johm", "John Smith"))
	assert.True(t, Match("invo", "Invoice #42"))
	assert.False(t, Match("bob", "Alice Jones"))
	assert.False(t, Match("", "anything"))
}

func TestBestMatchPrefersStrongerHit(t *testing.T) {
	candidates := [][]string{
		{"Weekly newsletter", "news@shop.com"},
		{"Invoice for March", "billing@acme.com"},
		{"Re: invoice question", "Alice <alice@example.com>"},
	}

	assert.Equal(t, 1, BestMatch("billing", candidates))
	assert.Equal(t, 2, BestMatch("alice", candidates))
	assert.Equal(t, -1, BestMatch("zebra", candidates))
}
