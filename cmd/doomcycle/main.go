// doomcycle is a terminal game about keeping a connected device alive,
// secure and compliant until its end of support.
//
// Usage:
//
//	doomcycle play [share-url]  - Play in the terminal, optionally from a share link
//	doomcycle simulate          - Run scripted games and print the outcomes
//	doomcycle devices [id]      - List the device catalog
//	doomcycle stats             - Show profile stats and achievements
//	doomcycle scores            - Show finished runs
//	doomcycle share [url]       - Build or inspect share links
//	doomcycle serve             - Host games over SSH
//
// Global flags:
//
//	--seed <value>        - RNG seed for a reproducible run (0 = random)
//	--db <path>           - Profile database (default: ~/.doomcycle/profile.db)
//	--profile <name>      - Profile used for saves and stats
//	--config <path>       - Engine tuning YAML
//	--difficulty <preset> - easy, normal or hard
//	--lang <tag>          - Language tag carried in share results
//	--log-level <level>   - debug, info, warn or error
//
// Every global flag can also be set through a DOOMCYCLE_* environment
// variable; flags win.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/doomcycle/internal/catalog"
	"github.com/vovakirdan/doomcycle/internal/config"
	"github.com/vovakirdan/doomcycle/internal/engine"
	"github.com/vovakirdan/doomcycle/internal/random"
	"github.com/vovakirdan/doomcycle/internal/storage"
)

var (
	// Global flags
	flagSeed       int64
	flagDBPath     string
	flagProfile    string
	flagConfig     string
	flagDifficulty string
	flagLang       string
	flagLogLevel   string
	flagCatalog    string
)

// Resolved by setup before any subcommand runs.
var (
	settings  config.Settings
	engineCfg config.Config
	cat       *catalog.Catalog
	logger    *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "doomcycle",
	Short: "Doomcycle - keep an IoT product alive until end of support",
	Long: `Doomcycle is a terminal game about the lifecycle of a connected device.
Budget drains, compliance drifts and crises arrive; survive until the final
month without doom reaching 100.

Available commands:
  play      - Play in the terminal
  simulate  - Run scripted games
  devices   - List the device catalog
  stats     - Profile stats and achievements
  scores    - Finished runs
  share     - Build or inspect share links
  serve     - Host games over SSH

Examples:
  doomcycle play
  doomcycle play --seed 42 --difficulty hard
  doomcycle simulate --runs 20 --device smart-lock
  doomcycle serve --ssh :2222`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	flags.StringVar(&flagDBPath, "db", "~/.doomcycle/profile.db", "Path to the profile database")
	flags.StringVar(&flagProfile, "profile", "default", "Profile name for saves and stats")
	flags.StringVar(&flagConfig, "config", "", "Path to engine tuning YAML")
	flags.StringVar(&flagDifficulty, "difficulty", "normal", "Difficulty preset: easy, normal, hard")
	flags.StringVar(&flagLang, "lang", "en", "Language tag for share results")
	flags.StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.StringVar(&flagCatalog, "catalog", "", "Directory with devices.yaml and events.yaml (default: built in)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup merges environment settings with flags and loads the tuning and
// the catalog.
func setup(cmd *cobra.Command, _ []string) error {
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		s.Seed = flagSeed
	}
	if flags.Changed("db") {
		s.DBPath = flagDBPath
	}
	if flags.Changed("profile") {
		s.Profile = flagProfile
	}
	if flags.Changed("config") {
		s.ConfigPath = flagConfig
	}
	if flags.Changed("difficulty") {
		s.Difficulty = flagDifficulty
	}
	if flags.Changed("lang") {
		s.Language = flagLang
	}
	if flags.Changed("log-level") {
		s.LogLevel = flagLogLevel
	}

	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "doomcycle",
		Level:           level,
	})

	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		return err
	}
	preset, err := config.ParseDifficulty(s.Difficulty)
	if err != nil {
		return err
	}
	config.ApplyPreset(&cfg, preset)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if flagCatalog != "" {
		cat, err = catalog.LoadDir(flagCatalog)
	} else {
		cat, err = catalog.LoadEmbedded()
	}
	if err != nil {
		return err
	}

	if s.Seed == 0 {
		if s.Seed, err = random.NewSeed(); err != nil {
			return err
		}
	}
	logger.Debug("settings resolved", "seed", s.Seed, "profile", s.Profile, "difficulty", preset)

	settings = s
	engineCfg = cfg
	return nil
}

// newEngine builds an engine over the loaded tuning and catalog.
func newEngine(seed int64) *engine.Engine {
	return engine.New(engineCfg, cat, engine.WithSeed(seed), engine.WithLogger(logger))
}

func openStore() (*storage.Store, error) {
	return storage.Open(settings.DBPath)
}
