package core

// RuntimeConfig contains per-run settings chosen by the host, not the
// catalog or the tuning file.
type RuntimeConfig struct {
	Seed     int64  // RNG seed for deterministic simulation (0 = host picks one)
	Language string // BCP 47 tag carried into share results
	Profile  string // Storage key for saves and stats
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Seed:     0, // 0 means the platform layer derives a seed
		Language: "en",
		Profile:  "default",
	}
}
