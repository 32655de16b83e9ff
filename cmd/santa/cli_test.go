package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iZac85/SecretSanta/internal/match"
)

func TestReceiverMatches(t *testing.T) {
	cases := []struct {
		name     string
		receiver string
		filters  []string
		want     bool
	}{
		{name: "no filters prints everything", receiver: "Anna Svensson", want: true},
		{name: "exact name", receiver: "Anna Svensson", filters: []string{"Anna Svensson"}, want: true},
		{name: "partial name", receiver: "Anna Svensson", filters: []string{"Anna"}, want: true},
		{name: "one of several filters", receiver: "Bertil", filters: []string{"Anna", "Bertil"}, want: true},
		{name: "no match", receiver: "Cecilia", filters: []string{"Anna"}, want: false},
		{name: "case sensitive like the stored names", receiver: "Anna", filters: []string{"anna"}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, receiverMatches(tc.receiver, tc.filters))
		})
	}
}

func TestEffectiveMaxAttempts(t *testing.T) {
	assert.Equal(t, match.DefaultMaxAttempts, effectiveMaxAttempts(0))
	assert.Equal(t, match.DefaultMaxAttempts, effectiveMaxAttempts(-1))
	assert.Equal(t, 25, effectiveMaxAttempts(25))
}
