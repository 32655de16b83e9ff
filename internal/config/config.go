// Package config loads the settings file. Settings cover where the group
// file and database live, how the matcher retries, and the SMS provider
// credentials. Credentials can come from the environment instead of the
// file so they never have to be written to disk.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings.
type Config struct {
	// Data locations
	Data DataConfig `yaml:"data"`

	// Matcher behavior
	Match MatchConfig `yaml:"match"`

	// SMS provider
	SMS SMSConfig `yaml:"sms"`
}

// DataConfig locates the input and output files.
type DataConfig struct {
	GroupFile    string `yaml:"group_file"`
	DatabasePath string `yaml:"database_path"`
}

// MatchConfig configures the assignment search.
type MatchConfig struct {
	// MaxAttempts caps the restart loop.
	MaxAttempts int `yaml:"max_attempts"`

	// HistoryYears is how many prior years of assignments to exclude.
	HistoryYears int `yaml:"history_years"`
}

// SMSConfig configures the TextMagic client and the outgoing message.
type SMSConfig struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	BaseURL  string `yaml:"base_url"`

	// Delay between consecutive sends, e.g. "1s".
	Delay string `yaml:"delay"`

	// MessageTemplate overrides the default greeting. %[1]s is the giver,
	// %[2]s the receiver.
	MessageTemplate string `yaml:"message_template"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			GroupFile:    "family_data.json",
			DatabasePath: "data/secretsanta.db",
		},
		Match: MatchConfig{
			MaxAttempts:  10,
			HistoryYears: 1,
		},
		SMS: SMSConfig{
			BaseURL: "https://rest.textmagic.com",
			Delay:   "1s",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SANTA_SMS_USERNAME"); v != "" {
		c.SMS.Username = v
	}
	if v := os.Getenv("SANTA_SMS_TOKEN"); v != "" {
		c.SMS.Token = v
	}
	if v := os.Getenv("SANTA_DB"); v != "" {
		c.Data.DatabasePath = v
	}
	if v := os.Getenv("SANTA_GROUP_FILE"); v != "" {
		c.Data.GroupFile = v
	}
}

// SendDelay parses the configured inter-send delay.
func (c *Config) SendDelay() (time.Duration, error) {
	if c.SMS.Delay == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.SMS.Delay)
	if err != nil {
		return 0, fmt.Errorf("invalid sms delay %q: %w", c.SMS.Delay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid sms delay %q: must not be negative", c.SMS.Delay)
	}
	return d, nil
}
