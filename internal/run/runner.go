// Package run sequences a full draw: build the history index, generate an
// assignment, persist it, verify it, and optionally notify everyone. The
// pieces it coordinates stay independent; this package only wires them
// together.
package run

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iZac85/SecretSanta/internal/group"
	"github.com/iZac85/SecretSanta/internal/match"
	"github.com/iZac85/SecretSanta/internal/notify"
	"github.com/iZac85/SecretSanta/internal/store"
	"github.com/iZac85/SecretSanta/internal/verify"
)

// ErrInvariantViolation is returned when a freshly generated assignment
// fails verification. The assignment is removed from the store before the
// error is returned so a broken draw can never be mistaken for a final
// one.
type ErrInvariantViolation struct {
	Report verify.Report
}

func (e *ErrInvariantViolation) Error() string {
	return fmt.Sprintf("generated assignment violates %d invariant(s): %v", len(e.Report.Violations), e.Report.Names())
}

// Runner holds the collaborators a draw needs.
type Runner struct {
	Store    *store.Store
	Notifier *notify.Notifier
	Logger   *zap.Logger
}

// Options controls one draw.
type Options struct {
	// Year the assignment is stored under.
	Year int

	// HistoryYears is how many prior years to exclude receivers from.
	HistoryYears int

	// MaxAttempts caps the matcher's restart loop.
	MaxAttempts int

	// Replace allows overwriting an already stored year.
	Replace bool

	// Send dispatches text messages after a verified draw.
	Send bool
}

// Run performs one complete draw for g and returns the verified
// assignment. Verification failures and exhausted retries are fatal: no
// unusable assignment survives in the store and nobody is notified.
func (r *Runner) Run(ctx context.Context, g *group.Group, opts Options) (match.Assignment, error) {
	logger := r.Logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.Int("year", opts.Year),
	)

	history, found, err := r.Store.History(opts.Year, opts.HistoryYears)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	logger.Info("loaded history",
		zap.Int("years_requested", opts.HistoryYears),
		zap.Int("years_found", found))

	assignment, stats, err := match.GenerateWithStats(g.Families, history, match.Options{
		MaxAttempts: opts.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("generated assignment",
		zap.Int("pairs", len(assignment)),
		zap.Int("attempts", stats.Attempts))

	if err := r.Store.Save(opts.Year, assignment, opts.Replace); err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	// Gate on the verifier directly rather than trusting the generator.
	report := verify.Check(assignment, g.Families, history)
	if !report.OK() {
		for _, v := range report.Violations {
			logger.Error("invariant violated", zap.String("violation", v.String()))
		}
		// Remove the bad draw so it cannot feed next year's history.
		if delErr := r.Store.Delete(opts.Year); delErr != nil {
			logger.Error("failed to remove unusable assignment", zap.Error(delErr))
		}
		return nil, &ErrInvariantViolation{Report: report}
	}
	logger.Info("assignment verified")

	if opts.Send {
		logger.Info("sending notifications", zap.Int("count", len(assignment)))
		if err := r.Notifier.NotifyAll(ctx, assignment, g.Contacts); err != nil {
			return assignment, fmt.Errorf("notification errors: %w", err)
		}
		logger.Info("notifications sent")
	}

	return assignment, nil
}
