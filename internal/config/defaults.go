package config

import (
	_ "embed"

	"github.com/vovakirdan/doomcycle/internal/core"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

// DefaultConfig returns the built-in engine configuration. It mirrors the
// embedded defaults/engine.yaml and is the last fallback of Load.
func DefaultConfig() Config {
	return Config{
		Timeline: TimelineConfig{
			TotalMonths: 60,
		},
		Doom: DoomConfig{
			Max: 100,
		},
		Compliance: ComplianceConfig{
			Start:             70,
			WarningThreshold:  40,
			CriticalThreshold: 20,
			WarningTag:        "non_compliant",
			CriticalTag:       "critical_vulnerability",
			EndOfLifeTag:      "end_of_life",
		},
		Funding: FundingConfig{
			Default: core.FundingPartial,
			Full:    FundingTier{ComplianceChange: 1, CostMultiplier: 1.0, EOLReduction: 6},
			Partial: FundingTier{ComplianceChange: -2, CostMultiplier: 0.5},
			None:    FundingTier{ComplianceChange: -5, CostMultiplier: 0},
		},
		Economy: EconomyConfig{
			LegacyThresholdMonth: 36,
			LegacyMultiplier:     1.5,
			StressTiers: []StressTier{
				{Threshold: -50_000, DoomPerMonth: 1.0 / 12},
				{Threshold: -150_000, DoomPerMonth: 1.0 / 6},
				{Threshold: -300_000, DoomPerMonth: 1.0 / 3},
			},
		},
		Events: EventsConfig{
			BaseProbability:  0.05,
			DoomDivisor:      500,
			RiskyTagBoost:    0.03,
			MaxProbability:   0.6,
			MinSpacingMonths: 2,
			RiskyTags: []string{
				"non_compliant",
				"critical_vulnerability",
				"end_of_life",
				"outdated_firmware",
				"cloud_dependency",
				"default_credentials",
				"legacy_protocol",
			},
			TrackDeflections:    true,
			DeflectionThreshold: 0.2,
		},
		Shipping: ShippingConfig{
			Reward:          50_000,
			DoomPenalty:     5,
			MaxDoomFraction: 0.8,
			Months:          1,
		},
		Setup: SetupConfig{
			PreferredDeviceID: "smart-thermostat",
			RandomDeviceCount: 3,
		},
		Stats: StatsConfig{
			RunHistoryLimit: 10,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultEngineYAML
}
