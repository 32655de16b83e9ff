package match

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iZac85/SecretSanta/internal/group"
)

func threeFamilies() []group.Family {
	return []group.Family{
		{"A", "B"},
		{"C", "D"},
		{"E", "F"},
	}
}

// checkInvariants asserts the assignment is a valid permutation under the
// family and history exclusions.
func checkInvariants(t *testing.T, a Assignment, families []group.Family, history HistoryIndex) {
	t.Helper()

	familyOf := make(map[string]int)
	var all []string
	for i, fam := range families {
		for _, name := range fam {
			familyOf[name] = i
			all = append(all, name)
		}
	}

	require.Len(t, a, len(all), "one pair per participant")

	givers := make(map[string]int)
	receivers := make(map[string]int)
	for _, p := range a {
		givers[p.Giver]++
		receivers[p.Receiver]++

		assert.NotEqual(t, p.Giver, p.Receiver, "self assignment")
		assert.NotEqual(t, familyOf[p.Giver], familyOf[p.Receiver],
			"%s and %s share a family", p.Giver, p.Receiver)
		assert.False(t, history.Excludes(p.Giver, p.Receiver),
			"%s repeated prior receiver %s", p.Giver, p.Receiver)
	}
	for _, name := range all {
		assert.Equal(t, 1, givers[name], "%s as giver", name)
		assert.Equal(t, 1, receivers[name], "%s as receiver", name)
	}
}

func TestGenerateThreeFamilies(t *testing.T) {
	families := threeFamilies()

	// Randomized output: run it a bunch of times, invariants must hold
	// every time.
	for i := 0; i < 50; i++ {
		a, err := Generate(families, nil, Options{MaxAttempts: 50})
		require.NoError(t, err)
		checkInvariants(t, a, families, nil)
	}
}

func TestGeneratePreservesInputOrder(t *testing.T) {
	families := threeFamilies()

	a, err := Generate(families, nil, Options{})
	require.NoError(t, err)

	want := []string{"A", "B", "C", "D", "E", "F"}
	for i, p := range a {
		assert.Equal(t, want[i], p.Giver)
	}
}

func TestGenerateSingleFamilyInfeasible(t *testing.T) {
	families := []group.Family{{"A", "B"}}

	_, stats, err := GenerateWithStats(families, nil, Options{})
	require.ErrorIs(t, err, ErrExhaustedRetries)
	assert.Equal(t, DefaultMaxAttempts, stats.Attempts)
}

func TestGenerateNoFamilies(t *testing.T) {
	_, err := Generate(nil, nil, Options{})
	require.ErrorIs(t, err, ErrExhaustedRetries)
}

func TestGenerateDominantFamilyInfeasible(t *testing.T) {
	// The big family has more members than everyone else combined, so
	// some of its members must run out of receivers.
	families := []group.Family{
		{"A", "B", "C", "D", "E"},
		{"X"},
	}

	_, err := Generate(families, nil, Options{MaxAttempts: 25})
	require.ErrorIs(t, err, ErrExhaustedRetries)
}

func TestGenerateHistoryExclusion(t *testing.T) {
	families := []group.Family{
		{"A", "B"},
		{"C", "D"},
	}
	history := HistoryIndex{"A": {"C"}}

	// With two families of two, "A" has exactly one legal receiver left.
	for i := 0; i < 50; i++ {
		a, err := Generate(families, history, Options{MaxAttempts: 50})
		require.NoError(t, err)
		checkInvariants(t, a, families, history)

		receiver, ok := a.Receiver("A")
		require.True(t, ok)
		assert.Equal(t, "D", receiver)
	}
}

func TestGenerateFullHistoryInfeasible(t *testing.T) {
	families := []group.Family{
		{"A"},
		{"B"},
	}
	// History starves A of its only candidate.
	history := HistoryIndex{"A": {"B"}}

	_, err := Generate(families, history, Options{})
	require.ErrorIs(t, err, ErrExhaustedRetries)
}

func TestGenerateMaxAttemptsRespected(t *testing.T) {
	families := []group.Family{{"A", "B"}}

	_, stats, err := GenerateWithStats(families, nil, Options{MaxAttempts: 3})
	require.ErrorIs(t, err, ErrExhaustedRetries)
	assert.Equal(t, 3, stats.Attempts)
}

func TestGenerateSeededRandReproducible(t *testing.T) {
	families := threeFamilies()

	a1, err := Generate(families, nil, Options{Rand: rand.New(rand.NewSource(42))})
	require.NoError(t, err)
	a2, err := Generate(families, nil, Options{Rand: rand.New(rand.NewSource(42))})
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
}

func TestGenerateDoesNotMutateHistory(t *testing.T) {
	families := threeFamilies()
	history := HistoryIndex{"A": {"C"}}

	_, err := Generate(families, history, Options{})
	require.NoError(t, err)

	assert.Equal(t, HistoryIndex{"A": {"C"}}, history)
}

func TestHistoryIndexExcludes(t *testing.T) {
	h := make(HistoryIndex)
	h.Add("A", "C")
	h.Add("A", "E")

	assert.True(t, h.Excludes("A", "C"))
	assert.True(t, h.Excludes("A", "E"))
	assert.False(t, h.Excludes("A", "D"))
	assert.False(t, h.Excludes("B", "C"))
}

func TestAssignmentReceiver(t *testing.T) {
	a := Assignment{{Giver: "A", Receiver: "C"}, {Giver: "B", Receiver: "D"}}

	r, ok := a.Receiver("B")
	require.True(t, ok)
	assert.Equal(t, "D", r)

	_, ok = a.Receiver("Z")
	assert.False(t, ok)
}

func TestGenerateErrorMessage(t *testing.T) {
	_, err := Generate([]group.Family{{"A", "B"}}, nil, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExhaustedRetries))
}
