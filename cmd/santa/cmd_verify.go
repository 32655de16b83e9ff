package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iZac85/SecretSanta/internal/group"
	"github.com/iZac85/SecretSanta/internal/verify"
)

// verifyCmd re-checks a stored assignment
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a stored year against all rules",
	Long: `Loads the assignment stored for the year and checks it against the
group file and the stored prior years: everyone gives and receives exactly
once, nobody has themselves or a family member, and nobody has a repeat
from a tracked prior year.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	g, err := group.Load(cfg.Data.GroupFile)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assignment, err := st.Load(year)
	if err != nil {
		return err
	}

	history, found, err := st.History(year, cfg.Match.HistoryYears)
	if err != nil {
		return err
	}
	logger.Debug("Loaded history for verification",
		zap.Int("years_requested", cfg.Match.HistoryYears),
		zap.Int("years_found", found))

	report := verify.Check(assignment, g.Families, history)
	if !report.OK() {
		for _, v := range report.Violations {
			fmt.Printf("FAIL  %s\n", v)
		}
		return fmt.Errorf("assignment for %d violates %d rule(s)", year, len(report.Violations))
	}

	fmt.Printf("Assignment for %d passed all checks (%d pairs, %d prior year(s) compared)\n",
		year, len(assignment), found)
	return nil
}
