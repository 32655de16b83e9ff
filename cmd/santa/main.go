package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iZac85/SecretSanta/internal/config"
	"github.com/iZac85/SecretSanta/internal/notify"
	"github.com/iZac85/SecretSanta/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	year       int

	// Logger
	logger *zap.Logger

	// Loaded settings
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "santa",
	Short: "Secret santa assignment generator",
	Long: `santa draws a secret gift-giver for every member of a multi-family
group. Nobody draws themselves, nobody draws someone in their own family,
and nobody draws the same person as in tracked prior years.

Assignments are stored per year and can be verified, listed, and sent out
as text messages afterwards.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if year == 0 {
			year = time.Now().Year()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "settings.yaml", "Settings file")
	rootCmd.PersistentFlags().IntVar(&year, "year", 0, "Assignment year (default: current year)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(yearsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the assignment database from the loaded settings.
func openStore() (*store.Store, error) {
	st, err := store.New(cfg.Data.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open assignment store: %w", err)
	}
	return st, nil
}

// newNotifier builds the notifier from the loaded settings.
func newNotifier() (*notify.Notifier, error) {
	delay, err := cfg.SendDelay()
	if err != nil {
		return nil, err
	}

	tmConfig := notify.DefaultTextMagicConfig(cfg.SMS.Username, cfg.SMS.Token)
	if cfg.SMS.BaseURL != "" {
		tmConfig.BaseURL = cfg.SMS.BaseURL
	}
	sender := notify.NewTextMagicClientWithConfig(tmConfig)

	opts := []notify.Option{notify.WithDelay(delay)}
	if cfg.SMS.MessageTemplate != "" {
		opts = append(opts, notify.WithTemplate(cfg.SMS.MessageTemplate))
	}
	return notify.New(sender, opts...), nil
}
