package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iZac85/SecretSanta/internal/group"
	"github.com/iZac85/SecretSanta/internal/match"
	"github.com/iZac85/SecretSanta/internal/run"
)

var (
	generateSend    bool
	generateReplace bool
)

// generateCmd draws, stores, and verifies a new assignment
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draw and store a new assignment for the year",
	Long: `Draws a fresh assignment for every participant, stores it under the
year, and verifies it against all rules including the stored prior years.

Text messages are only sent with --send, so a draw can be inspected with
'santa show' before anyone is notified.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateSend, "send", false, "Send text messages after a verified draw")
	generateCmd.Flags().BoolVar(&generateReplace, "replace", false, "Overwrite an already stored year")
}

// effectiveMaxAttempts is the attempt cap the matcher actually uses:
// an unset or zero setting falls back to the matcher's default.
func effectiveMaxAttempts(configured int) int {
	if configured <= 0 {
		return match.DefaultMaxAttempts
	}
	return configured
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	g, err := group.Load(cfg.Data.GroupFile)
	if err != nil {
		return err
	}
	logger.Info("Loaded group",
		zap.String("file", cfg.Data.GroupFile),
		zap.Int("families", len(g.Families)),
		zap.Int("participants", len(g.Participants())))

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	notifier, err := newNotifier()
	if err != nil {
		return err
	}

	runner := &run.Runner{
		Store:    st,
		Notifier: notifier,
		Logger:   logger,
	}

	assignment, err := runner.Run(ctx, g, run.Options{
		Year:         year,
		HistoryYears: cfg.Match.HistoryYears,
		MaxAttempts:  cfg.Match.MaxAttempts,
		Replace:      generateReplace,
		Send:         generateSend,
	})
	if errors.Is(err, match.ErrExhaustedRetries) {
		return fmt.Errorf("could not find a valid assignment in %d attempts; "+
			"the group may be too small or have too many years of history excluded: %w",
			effectiveMaxAttempts(cfg.Match.MaxAttempts), err)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Stored verified assignment for %d (%d pairs)\n", year, len(assignment))
	if !generateSend {
		fmt.Println("No messages sent. Re-run with --send, or use 'santa show' to inspect.")
	}
	return nil
}
