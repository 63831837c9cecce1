package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/doomcycle/internal/autoplay"
	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/random"
	"github.com/vovakirdan/doomcycle/internal/session"
)

var (
	flagRuns          int
	flagSimDevice     string
	flagSimFunding    string
	flagShipBelow     float64
	flagRecord        bool
	flagRecordProfile string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run scripted games and print the outcomes",
	Long: `Play one or more runs with a deterministic scripted player. Run N uses
a seed derived from --seed, so the same flags always print the same table.

The player funds compliance at --funding, ships while doom is under
--ship-below, and answers every crisis with the response that costs the
least doom and money combined.

Examples:
  doomcycle simulate --seed 42
  doomcycle simulate --runs 50 --device insulin-pump --funding partial
  doomcycle simulate --runs 10 --record`,
	RunE: runSimulate,
}

func init() {
	def := autoplay.DefaultStrategy()
	simulateCmd.Flags().IntVar(&flagRuns, "runs", 1, "Number of runs")
	simulateCmd.Flags().StringVar(&flagSimDevice, "device", "", "Device id to play (default: catalog preference)")
	simulateCmd.Flags().StringVar(&flagSimFunding, "funding", string(def.Funding), "Funding level: full, partial, none")
	simulateCmd.Flags().Float64Var(&flagShipBelow, "ship-below", def.ShipBelowDoom, "Ship releases while doom is below this value")
	simulateCmd.Flags().BoolVar(&flagRecord, "record", false, "Store the runs in the profile database")
	simulateCmd.Flags().StringVar(&flagRecordProfile, "record-profile", "autoplay", "Profile that recorded runs are stored under")
}

func runSimulate(_ *cobra.Command, _ []string) error {
	if flagRuns <= 0 {
		return fmt.Errorf("--runs must be positive, got %d", flagRuns)
	}
	funding := core.FundingLevel(flagSimFunding)
	if !funding.Valid() {
		return fmt.Errorf("unknown funding level %q (want full, partial or none)", flagSimFunding)
	}
	if flagSimDevice != "" {
		if _, ok := cat.DeviceByID(flagSimDevice); !ok {
			return unknownDeviceError(flagSimDevice)
		}
		engineCfg.Setup.PreferredDeviceID = flagSimDevice
	}

	strategy := autoplay.DefaultStrategy()
	strategy.DeviceID = flagSimDevice
	strategy.Funding = funding
	strategy.ShipBelowDoom = flagShipBelow

	var store session.Store
	if flagRecord {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\tDEVICE\tOUTCOME\tMONTH\tBUDGET\tDOOM\tCOMPLIANCE\tCRISES\tSHIPPED")

	wins := 0
	for i := range flagRuns {
		seed := settings.Seed
		if i > 0 {
			seed = random.Derive(settings.Seed, fmt.Sprintf("simulate:%d", i))
		}
		e := newEngine(seed)

		var host *session.Host
		if store != nil {
			h, err := session.New(e, store, session.Options{
				Profile:  flagRecordProfile,
				Language: settings.Language,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			host = h
		}

		res := strategy.Play(e)
		if host != nil {
			host.Close()
		}

		final := res.Final
		if final.Phase == core.PhaseVictory {
			wins++
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%s\t%.1f\t%.1f\t%d\t%d\n",
			i+1, seed, final.DeviceID(), outcomeLabel(final), final.TimelineMonth,
			formatMoney(final.Budget), final.DoomLevel, final.ComplianceLevel, res.Crises, res.Shipped)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if flagRuns > 1 {
		fmt.Printf("\nSurvived %d of %d runs (%s).\n", wins, flagRuns,
			humanize.FormatFloat("#.#", 100*float64(wins)/float64(flagRuns))+"%")
	}
	return nil
}

func outcomeLabel(snap core.Snapshot) string {
	if snap.Phase == core.PhaseAutopsy && snap.DeathAnalysis != nil {
		return "died (" + strings.ReplaceAll(snap.DeathAnalysis.Cause, "_", " ") + ")"
	}
	return string(snap.Phase)
}

// formatMoney renders whole currency units with thousands separators.
func formatMoney(v int64) string {
	if v < 0 {
		return "-$" + humanize.Comma(-v)
	}
	return "$" + humanize.Comma(v)
}
