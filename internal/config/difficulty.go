package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParseDifficulty validates a preset name. Empty means normal.
func ParseDifficulty(name string) (DifficultyPreset, error) {
	switch DifficultyPreset(name) {
	case "", DifficultyNormal:
		return DifficultyNormal, nil
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", name)
}

// ApplyPreset modifies the config based on a difficulty preset.
// Normal leaves the loaded tuning untouched.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Events.BaseProbability *= 0.5
		cfg.Events.MaxProbability = minF(cfg.Events.MaxProbability, 0.4)
		cfg.Events.MinSpacingMonths++
		scaleStress(cfg, 0.5)
		cfg.Shipping.DoomPenalty *= 0.6
	case DifficultyHard:
		cfg.Events.BaseProbability *= 1.5
		cfg.Events.RiskyTagBoost *= 1.5
		cfg.Events.MinSpacingMonths = max(1, cfg.Events.MinSpacingMonths-1)
		scaleStress(cfg, 1.5)
		cfg.Compliance.Start = max(cfg.Compliance.CriticalThreshold, cfg.Compliance.Start-10)
	}
}

func scaleStress(cfg *Config, factor float64) {
	tiers := make([]StressTier, len(cfg.Economy.StressTiers))
	for i, t := range cfg.Economy.StressTiers {
		tiers[i] = StressTier{Threshold: t.Threshold, DoomPerMonth: t.DoomPerMonth * factor}
	}
	cfg.Economy.StressTiers = tiers
}

// minF returns the smaller of two floats.
func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
