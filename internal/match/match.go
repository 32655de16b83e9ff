// Package match implements the constrained random assignment engine.
//
// Every participant is assigned exactly one receiver so that the receiver
// mapping is a permutation of the full participant set with no fixed
// points, no pair inside the same family, and no repeat of a receiver the
// giver already had in a tracked prior year. The engine is a randomized
// greedy pass over the families with a full restart whenever a member runs
// out of legal receivers.
package match

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/iZac85/SecretSanta/internal/group"
)

// ErrExhaustedRetries is returned when no complete assignment was found
// within the configured number of attempts. It usually means the
// group/history combination is infeasible, for example a single family or
// too many years of history excluding every remaining candidate.
var ErrExhaustedRetries = errors.New("assignment randomization failed: maximum number of attempts reached")

// DefaultMaxAttempts bounds the restart loop when Options.MaxAttempts is
// left at zero.
const DefaultMaxAttempts = 10

// Pair assigns Giver to give a gift to Receiver.
type Pair struct {
	Giver    string
	Receiver string
}

// Assignment is an ordered list of pairs, one per participant, in the
// order the participants appear in the input families.
type Assignment []Pair

// Receiver returns the receiver assigned to giver.
func (a Assignment) Receiver(giver string) (string, bool) {
	for _, p := range a {
		if p.Giver == giver {
			return p.Receiver, true
		}
	}
	return "", false
}

// HistoryIndex maps a giver to the receivers they were assigned in prior
// years. A giver absent from the index has no exclusions. Note the
// direction: these are people the giver previously gave to, not people
// who gave to the giver.
type HistoryIndex map[string][]string

// Add records that giver had receiver in some prior year.
func (h HistoryIndex) Add(giver, receiver string) {
	h[giver] = append(h[giver], receiver)
}

// Excludes reports whether receiver is a prior receiver of giver.
func (h HistoryIndex) Excludes(giver, receiver string) bool {
	for _, r := range h[giver] {
		if r == receiver {
			return true
		}
	}
	return false
}

// Options controls a Generate run.
type Options struct {
	// MaxAttempts caps the number of full restarts. Zero means
	// DefaultMaxAttempts.
	MaxAttempts int

	// Rand is the randomness source. Nil means a fresh source seeded
	// from crypto/rand.
	Rand *rand.Rand
}

// Stats reports how the search went.
type Stats struct {
	// Attempts is the number of attempts used, counting the successful
	// one.
	Attempts int
}

// Generate produces a complete assignment for the given families under
// the family and history exclusions. See GenerateWithStats.
func Generate(families []group.Family, history HistoryIndex, opts Options) (Assignment, error) {
	a, _, err := GenerateWithStats(families, history, opts)
	return a, err
}

// GenerateWithStats is Generate plus a report of how many attempts the
// search needed. On failure it returns ErrExhaustedRetries and no
// assignment; a partial attempt is never returned.
func GenerateWithStats(families []group.Family, history HistoryIndex, opts Options) (Assignment, Stats, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cryptoSeed()))
	}

	if len(families) == 0 {
		return nil, Stats{}, fmt.Errorf("no families to assign: %w", ErrExhaustedRetries)
	}

	// The only legal receivers for a family's members, before claimed and
	// history exclusions, are the members of all other families. Computed
	// once per family, reused across attempts.
	complements := make([][]string, len(families))
	for i := range families {
		var others []string
		for j, fam := range families {
			if j != i {
				others = append(others, fam...)
			}
		}
		complements[i] = others
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		assignment, ok := tryOnce(families, complements, history, rng)
		if ok {
			return assignment, Stats{Attempts: attempt}, nil
		}
	}
	return nil, Stats{Attempts: maxAttempts}, ErrExhaustedRetries
}

// tryOnce runs a single greedy pass. It returns ok=false as soon as any
// member has no legal receiver left; the caller discards the partial
// result and restarts. A dead end this late cannot be repaired by
// adjusting only later choices, so the whole attempt is abandoned.
func tryOnce(families []group.Family, complements [][]string, history HistoryIndex, rng *rand.Rand) (Assignment, bool) {
	var assignment Assignment
	claimed := make(map[string]bool)

	for i, fam := range families {
		for _, member := range fam {
			var candidates []string
			for _, name := range complements[i] {
				if claimed[name] {
					continue
				}
				if history.Excludes(member, name) {
					continue
				}
				candidates = append(candidates, name)
			}
			if len(candidates) == 0 {
				return nil, false
			}
			receiver := candidates[rng.Intn(len(candidates))]
			claimed[receiver] = true
			assignment = append(assignment, Pair{Giver: member, Receiver: receiver})
		}
	}
	return assignment, true
}

// cryptoSeed draws a 64-bit seed from crypto/rand so independent runs do
// not repeat each other.
func cryptoSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
