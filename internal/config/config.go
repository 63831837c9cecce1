// Package config provides YAML-based engine tuning, difficulty presets and
// environment-driven runtime settings.
package config

import (
	"fmt"

	"github.com/vovakirdan/doomcycle/internal/core"
)

// Config contains every tunable constant of the simulation.
type Config struct {
	Timeline   TimelineConfig   `yaml:"timeline"`
	Doom       DoomConfig       `yaml:"doom"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Funding    FundingConfig    `yaml:"funding"`
	Economy    EconomyConfig    `yaml:"economy"`
	Events     EventsConfig     `yaml:"events"`
	Shipping   ShippingConfig   `yaml:"shipping"`
	Setup      SetupConfig      `yaml:"setup"`
	Stats      StatsConfig      `yaml:"stats"`
}

// TimelineConfig defines the length of a run.
type TimelineConfig struct {
	TotalMonths int `yaml:"total_months"`
}

// DoomConfig defines the failure threshold.
type DoomConfig struct {
	Max float64 `yaml:"max"` // Autopsy once doom reaches this value
}

// ComplianceConfig defines the starting level and the tag thresholds.
type ComplianceConfig struct {
	Start             float64 `yaml:"start"`
	WarningThreshold  float64 `yaml:"warning_threshold"`  // Below this the non-compliant tag is active
	CriticalThreshold float64 `yaml:"critical_threshold"` // Below this the critical-vulnerability tag is active
	WarningTag        string  `yaml:"warning_tag"`
	CriticalTag       string  `yaml:"critical_tag"`
	EndOfLifeTag      string  `yaml:"end_of_life_tag"`
}

// FundingConfig holds one tier per funding level.
type FundingConfig struct {
	Default core.FundingLevel `yaml:"default"`
	Full    FundingTier       `yaml:"full"`
	Partial FundingTier       `yaml:"partial"`
	None    FundingTier       `yaml:"none"`
}

// FundingTier defines how a funding level moves compliance and cost.
type FundingTier struct {
	ComplianceChange float64 `yaml:"compliance_change"` // Per month
	CostMultiplier   float64 `yaml:"cost_multiplier"`
	EOLReduction     int     `yaml:"eol_reduction"` // Months pulled off the device end-of-life
}

// Tier returns the funding tier for a level. Unknown levels get the
// partial tier.
func (f FundingConfig) Tier(level core.FundingLevel) FundingTier {
	switch level {
	case core.FundingFull:
		return f.Full
	case core.FundingNone:
		return f.None
	default:
		return f.Partial
	}
}

// EconomyConfig defines maintenance aging and budget stress.
type EconomyConfig struct {
	LegacyThresholdMonth int          `yaml:"legacy_threshold_month"` // Used when a device has no end-of-life month
	LegacyMultiplier     float64      `yaml:"legacy_multiplier"`
	StressTiers          []StressTier `yaml:"stress_tiers"`
}

// StressTier adds DoomPerMonth while the budget is below Threshold.
type StressTier struct {
	Threshold    int64   `yaml:"threshold"`
	DoomPerMonth float64 `yaml:"doom_per_month"`
}

// EventsConfig defines the crisis trigger probability.
type EventsConfig struct {
	BaseProbability     float64  `yaml:"base_probability"`
	DoomDivisor         float64  `yaml:"doom_divisor"`
	RiskyTagBoost       float64  `yaml:"risky_tag_boost"`
	MaxProbability      float64  `yaml:"max_probability"`
	MinSpacingMonths    int      `yaml:"min_spacing_months"`
	RiskyTags           []string `yaml:"risky_tags"`
	TrackDeflections    bool     `yaml:"track_deflections"`
	DeflectionThreshold float64  `yaml:"deflection_threshold"` // Minimum probability for a quiet month to count as deflected
}

// ShippingConfig defines the ship-product action.
type ShippingConfig struct {
	Reward          int64   `yaml:"reward"`
	DoomPenalty     float64 `yaml:"doom_penalty"`
	MaxDoomFraction float64 `yaml:"max_doom_fraction"` // Shipping allowed while doom < fraction * max
	Months          int     `yaml:"months"`
}

// SetupConfig defines the device draw.
type SetupConfig struct {
	PreferredDeviceID string `yaml:"preferred_device_id"`
	RandomDeviceCount int    `yaml:"random_device_count"`
}

// StatsConfig defines cross-session bookkeeping.
type StatsConfig struct {
	RunHistoryLimit int `yaml:"run_history_limit"`
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	switch {
	case c.Timeline.TotalMonths <= 0:
		return fmt.Errorf("config: timeline.total_months must be positive, got %d", c.Timeline.TotalMonths)
	case c.Doom.Max <= core.MinScore || c.Doom.Max > core.MaxScore:
		return fmt.Errorf("config: doom.max must be in (0, 100], got %g", c.Doom.Max)
	case c.Compliance.Start < core.MinScore || c.Compliance.Start > core.MaxScore:
		return fmt.Errorf("config: compliance.start must be in [0, 100], got %g", c.Compliance.Start)
	case c.Compliance.CriticalThreshold > c.Compliance.WarningThreshold:
		return fmt.Errorf("config: compliance.critical_threshold must not exceed warning_threshold")
	case !c.Funding.Default.Valid():
		return fmt.Errorf("config: funding.default %q is not a funding level", c.Funding.Default)
	case c.Events.DoomDivisor <= 0:
		return fmt.Errorf("config: events.doom_divisor must be positive, got %g", c.Events.DoomDivisor)
	case c.Events.MaxProbability < 0 || c.Events.MaxProbability > 1:
		return fmt.Errorf("config: events.max_probability must be in [0, 1], got %g", c.Events.MaxProbability)
	case c.Events.BaseProbability < 0:
		return fmt.Errorf("config: events.base_probability must not be negative, got %g", c.Events.BaseProbability)
	case c.Shipping.Months <= 0:
		return fmt.Errorf("config: shipping.months must be positive, got %d", c.Shipping.Months)
	case c.Setup.RandomDeviceCount < 0:
		return fmt.Errorf("config: setup.random_device_count must not be negative")
	case c.Stats.RunHistoryLimit <= 0:
		return fmt.Errorf("config: stats.run_history_limit must be positive, got %d", c.Stats.RunHistoryLimit)
	}
	for i, tier := range c.Economy.StressTiers {
		if tier.Threshold >= 0 {
			return fmt.Errorf("config: economy.stress_tiers[%d].threshold must be negative, got %d", i, tier.Threshold)
		}
	}
	return nil
}
