// Package verify checks a finished assignment against every rule the
// matcher is supposed to honor. It is used both as a gate right after
// generation and as a standalone check of a stored year.
package verify

import (
	"fmt"

	"github.com/iZac85/SecretSanta/internal/group"
	"github.com/iZac85/SecretSanta/internal/match"
)

// Invariant names a rule an assignment can break.
type Invariant string

const (
	// Completeness: every participant gives exactly once and receives
	// exactly once.
	Completeness Invariant = "completeness"

	// SelfAssignment: a participant was assigned to themselves.
	SelfAssignment Invariant = "self_assignment"

	// FamilyAssignment: a participant was assigned someone in their own
	// family.
	FamilyAssignment Invariant = "family_assignment"

	// HistoryRepeat: a participant was assigned the same receiver as in a
	// tracked prior year.
	HistoryRepeat Invariant = "history_repeat"
)

// Violation is one broken rule with enough detail to read in a log.
type Violation struct {
	Invariant Invariant
	Detail    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Invariant, v.Detail)
}

// Report collects every violation found. All checks always run; nothing
// short-circuits on the first failure.
type Report struct {
	Violations []Violation
}

// OK reports whether the assignment passed every check.
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

// Names returns the distinct invariant names violated, in first-seen
// order.
func (r Report) Names() []Invariant {
	var names []Invariant
	seen := make(map[Invariant]bool)
	for _, v := range r.Violations {
		if !seen[v.Invariant] {
			seen[v.Invariant] = true
			names = append(names, v.Invariant)
		}
	}
	return names
}

func (r *Report) add(inv Invariant, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Invariant: inv,
		Detail:    fmt.Sprintf(format, args...),
	})
}

// Check verifies assignment against families and history. It never
// mutates its inputs and is safe to call repeatedly; the same inputs
// always produce the same report. Prior years absent from history are
// simply not checked.
func Check(assignment match.Assignment, families []group.Family, history match.HistoryIndex) Report {
	var report Report

	participants := make(map[string]int)
	for i, fam := range families {
		for _, name := range fam {
			participants[name] = i
		}
	}

	// Completeness: givers and receivers must each cover the participant
	// set exactly once.
	giverCount := make(map[string]int)
	receiverCount := make(map[string]int)
	for _, p := range assignment {
		giverCount[p.Giver]++
		receiverCount[p.Receiver]++
	}
	// Walk families in input order so repeated calls report violations in
	// the same order.
	for _, fam := range families {
		for _, name := range fam {
			switch n := giverCount[name]; n {
			case 1:
			case 0:
				report.add(Completeness, "%s has no assigned receiver", name)
			default:
				report.add(Completeness, "%s appears %d times as giver", name, n)
			}
			switch n := receiverCount[name]; n {
			case 1:
			case 0:
				report.add(Completeness, "%s is nobody's receiver", name)
			default:
				report.add(Completeness, "%s appears %d times as receiver", name, n)
			}
		}
	}
	for _, p := range assignment {
		if _, ok := participants[p.Giver]; !ok {
			report.add(Completeness, "giver %s is not a participant", p.Giver)
		}
		if _, ok := participants[p.Receiver]; !ok {
			report.add(Completeness, "receiver %s is not a participant", p.Receiver)
		}
	}

	for _, p := range assignment {
		if p.Giver == p.Receiver {
			report.add(SelfAssignment, "%s is assigned to themselves", p.Giver)
		}

		gf, gok := participants[p.Giver]
		rf, rok := participants[p.Receiver]
		if gok && rok && gf == rf && p.Giver != p.Receiver {
			report.add(FamilyAssignment, "%s and %s are in the same family", p.Giver, p.Receiver)
		}

		if history.Excludes(p.Giver, p.Receiver) {
			report.add(HistoryRepeat, "%s already had %s in a prior year", p.Giver, p.Receiver)
		}
	}

	return report
}
