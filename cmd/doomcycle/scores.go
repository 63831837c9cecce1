package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/doomcycle/internal/platform/tui"
)

var (
	flagLimit       int
	flagAllProfiles bool
	flagByDevice    bool
	flagInteractive bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show finished runs",
	Long: `Display the best finished runs of the profile, longest survival first,
lowest doom breaking ties.

Examples:
  doomcycle scores
  doomcycle scores --all --limit 20
  doomcycle scores --devices
  doomcycle scores -i`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagAllProfiles, "all", false, "Include every profile")
	scoresCmd.Flags().BoolVar(&flagByDevice, "devices", false, "Summarise runs per device")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse runs in a table")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	profile := settings.Profile
	if flagAllProfiles {
		profile = ""
	}

	if flagInteractive {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, profile, width, height)
	}

	if flagByDevice {
		summaries, err := store.DeviceSummaries(profile)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No finished runs yet.")
			return nil
		}
		fmt.Printf("  %-20s  %-4s  %-4s  %-4s  %-8s  %s\n", "Device", "Runs", "Wins", "Best", "Avg doom", "Last played")
		fmt.Printf("  %-20s  %-4s  %-4s  %-4s  %-8s  %s\n", "------", "----", "----", "----", "--------", "-----------")
		for _, s := range summaries {
			fmt.Printf("  %-20s  %-4d  %-4d  %-4d  %-8.1f  %s\n",
				s.DeviceID, s.Runs, s.Wins, s.BestMonths, s.AvgDoom, humanize.Time(s.LastPlayed))
		}
		return nil
	}

	runs, err := store.TopRuns(profile, flagLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No finished runs yet.")
		fmt.Println()
		fmt.Println("Play 'doomcycle play' to set the first record!")
		return nil
	}

	fmt.Printf("  %-5s  %-12s  %-20s  %-8s  %-6s  %-6s  %s\n", "Rank", "Profile", "Device", "Outcome", "Months", "Doom", "Date")
	fmt.Printf("  %-5s  %-12s  %-20s  %-8s  %-6s  %-6s  %s\n", "----", "-------", "------", "-------", "------", "----", "----")
	for i, r := range runs {
		fmt.Printf("  %-5s  %-12s  %-20s  %-8s  %-6d  %-6.1f  %s\n",
			humanize.Ordinal(i+1), r.Profile, r.DeviceID, r.Outcome, r.Months, r.DoomLevel,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
