package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() failed: %v", err)
	}
}

func TestEmbeddedYAMLMatchesDefaults(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("embedded defaults drifted from DefaultConfig():\n got %+v\nwant %+v", cfg, DefaultConfig())
	}
}

func TestLoadCustomPathOverridesOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	data := []byte("timeline:\n  total_months: 24\nshipping:\n  reward: 1000\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Timeline.TotalMonths != 24 {
		t.Errorf("TotalMonths = %d, expected 24", cfg.Timeline.TotalMonths)
	}
	if cfg.Shipping.Reward != 1000 {
		t.Errorf("Reward = %d, expected 1000", cfg.Shipping.Reward)
	}
	if cfg.Doom.Max != 100 {
		t.Errorf("Doom.Max = %g, expected default 100", cfg.Doom.Max)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("doom:\n  max: 250\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for doom.max out of range")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero months", func(c *Config) { c.Timeline.TotalMonths = 0 }},
		{"doom max zero", func(c *Config) { c.Doom.Max = 0 }},
		{"bad funding default", func(c *Config) { c.Funding.Default = "lavish" }},
		{"positive stress threshold", func(c *Config) { c.Economy.StressTiers[0].Threshold = 10 }},
		{"zero divisor", func(c *Config) { c.Events.DoomDivisor = 0 }},
		{"probability above one", func(c *Config) { c.Events.MaxProbability = 1.5 }},
		{"critical above warning", func(c *Config) { c.Compliance.CriticalThreshold = 80 }},
		{"no run history", func(c *Config) { c.Stats.RunHistoryLimit = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	base := DefaultConfig()

	easy := DefaultConfig()
	ApplyPreset(&easy, DifficultyEasy)
	if easy.Events.BaseProbability >= base.Events.BaseProbability {
		t.Error("easy should lower base probability")
	}
	if easy.Economy.StressTiers[0].DoomPerMonth >= base.Economy.StressTiers[0].DoomPerMonth {
		t.Error("easy should soften budget stress")
	}
	if base.Economy.StressTiers[0].DoomPerMonth != DefaultConfig().Economy.StressTiers[0].DoomPerMonth {
		t.Error("ApplyPreset must not alias the tier slice of another config")
	}

	hard := DefaultConfig()
	ApplyPreset(&hard, DifficultyHard)
	if hard.Events.BaseProbability <= base.Events.BaseProbability {
		t.Error("hard should raise base probability")
	}
	if err := hard.Validate(); err != nil {
		t.Errorf("hard preset produced invalid config: %v", err)
	}

	normal := DefaultConfig()
	ApplyPreset(&normal, DifficultyNormal)
	if !reflect.DeepEqual(normal, base) {
		t.Error("normal preset should not change the config")
	}
}

func TestParseDifficulty(t *testing.T) {
	if p, err := ParseDifficulty(""); err != nil || p != DifficultyNormal {
		t.Errorf("ParseDifficulty(\"\") = %q, %v", p, err)
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings(map[string]string{
		"DOOMCYCLE_SEED":    "42",
		"DOOMCYCLE_PROFILE": "alice",
	})
	if err != nil {
		t.Fatalf("ParseSettings() failed: %v", err)
	}
	if s.Seed != 42 || s.Profile != "alice" {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.Language != "en" || s.LogLevel != "warn" {
		t.Errorf("defaults not applied: %+v", s)
	}

	if _, err := ParseSettings(map[string]string{"DOOMCYCLE_SEED": "not-a-number"}); err == nil {
		t.Error("expected error for malformed seed")
	}
}
