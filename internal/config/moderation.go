package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvModerationToxicityThreshold    = "ARBITER_MODERATION_TOXICITY_THRESHOLD"
	EnvModerationReviewThreshold      = "ARBITER_MODERATION_REVIEW_THRESHOLD"
	EnvModerationAIRejectionThreshold = "ARBITER_MODERATION_AI_REJECTION_THRESHOLD"
	EnvModerationMaxAttempts          = "ARBITER_MODERATION_MAX_ATTEMPTS"
	EnvModerationMaxPendingAge        = "ARBITER_MODERATION_MAX_PENDING_AGE"
	EnvModerationSweepInterval        = "ARBITER_MODERATION_SWEEP_INTERVAL"
	EnvModerationSweepLimit           = "ARBITER_MODERATION_SWEEP_LIMIT"
	EnvModerationSweepWorkers         = "ARBITER_MODERATION_SWEEP_WORKERS"
)

// ModerationConfig holds the decision thresholds and the backlog retry policy.
type ModerationConfig struct {
	ToxicityThreshold    float64 `toml:"toxicity_threshold"`
	ReviewThreshold      float64 `toml:"review_threshold"`
	AIRejectionThreshold float64 `toml:"ai_rejection_threshold"`
	MaxAttempts          int     `toml:"max_attempts"`
	MaxPendingAge        string  `toml:"max_pending_age"`
	SweepInterval        string  `toml:"sweep_interval"`
	SweepLimit           int     `toml:"sweep_limit"`
	SweepWorkers         int     `toml:"sweep_workers"`
}

// MaxPendingAgeDuration returns MaxPendingAge as a time.Duration.
func (c *ModerationConfig) MaxPendingAgeDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxPendingAge)
	return d
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *ModerationConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ModerationConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ModerationConfig) Merge(overlay *ModerationConfig) {
	if overlay.ToxicityThreshold != 0 {
		c.ToxicityThreshold = overlay.ToxicityThreshold
	}
	if overlay.ReviewThreshold != 0 {
		c.ReviewThreshold = overlay.ReviewThreshold
	}
	if overlay.AIRejectionThreshold != 0 {
		c.AIRejectionThreshold = overlay.AIRejectionThreshold
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.MaxPendingAge != "" {
		c.MaxPendingAge = overlay.MaxPendingAge
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
	if overlay.SweepLimit != 0 {
		c.SweepLimit = overlay.SweepLimit
	}
	if overlay.SweepWorkers != 0 {
		c.SweepWorkers = overlay.SweepWorkers
	}
}

func (c *ModerationConfig) loadDefaults() {
	if c.ToxicityThreshold == 0 {
		c.ToxicityThreshold = 0.7
	}
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = 0.5
	}
	if c.AIRejectionThreshold == 0 {
		c.AIRejectionThreshold = 0.2
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.MaxPendingAge == "" {
		c.MaxPendingAge = "24h"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1m"
	}
	if c.SweepLimit == 0 {
		c.SweepLimit = 50
	}
	if c.SweepWorkers == 0 {
		c.SweepWorkers = 4
	}
}

func (c *ModerationConfig) loadEnv() {
	setFloat := func(envVar string, target *float64) {
		if v := os.Getenv(envVar); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*target = f
			}
		}
	}
	setInt := func(envVar string, target *int) {
		if v := os.Getenv(envVar); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}
	setString := func(envVar string, target *string) {
		if v := os.Getenv(envVar); v != "" {
			*target = v
		}
	}

	setFloat(EnvModerationToxicityThreshold, &c.ToxicityThreshold)
	setFloat(EnvModerationReviewThreshold, &c.ReviewThreshold)
	setFloat(EnvModerationAIRejectionThreshold, &c.AIRejectionThreshold)
	setInt(EnvModerationMaxAttempts, &c.MaxAttempts)
	setString(EnvModerationMaxPendingAge, &c.MaxPendingAge)
	setString(EnvModerationSweepInterval, &c.SweepInterval)
	setInt(EnvModerationSweepLimit, &c.SweepLimit)
	setInt(EnvModerationSweepWorkers, &c.SweepWorkers)
}

func (c *ModerationConfig) validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1]: %v", name, v)
		}
		return nil
	}

	if err := inUnit("toxicity_threshold", c.ToxicityThreshold); err != nil {
		return err
	}
	if err := inUnit("review_threshold", c.ReviewThreshold); err != nil {
		return err
	}
	if err := inUnit("ai_rejection_threshold", c.AIRejectionThreshold); err != nil {
		return err
	}
	if c.ReviewThreshold > c.ToxicityThreshold {
		return fmt.Errorf("review_threshold cannot exceed toxicity_threshold")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be positive")
	}
	if _, err := time.ParseDuration(c.MaxPendingAge); err != nil {
		return fmt.Errorf("invalid max_pending_age: %w", err)
	}
	if _, err := time.ParseDuration(c.SweepInterval); err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	if c.SweepWorkers < 1 {
		return fmt.Errorf("sweep_workers must be positive")
	}
	return nil
}
