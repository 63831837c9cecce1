package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/doomcycle/internal/achievements"
	"github.com/vovakirdan/doomcycle/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show profile stats and achievements",
	Long: `Display the cross-session stats of a profile: games played and won,
survival records, recent runs and achievements.

Examples:
  doomcycle stats
  doomcycle stats --profile alice`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.LoadStats(settings.Profile)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("No games recorded for profile %q yet.\n", settings.Profile)
		fmt.Println("Run 'doomcycle play' to start one.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Profile %s\n\n", settings.Profile)
	fmt.Printf("  Games played:    %d\n", stats.GamesPlayed)
	fmt.Printf("  Games won:       %d\n", stats.GamesWon)
	fmt.Printf("  Best survival:   %d months\n", stats.BestSurvivalMonths)
	fmt.Printf("  Months survived: %s\n", humanize.Comma(int64(stats.TotalMonthsSurvived)))
	if stats.FavoriteDevice != "" {
		fmt.Printf("  Favorite device: %s\n", stats.FavoriteDevice)
	}
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("  Last played:     %s\n", humanize.Time(stats.LastPlayed))
	}

	if len(stats.RunHistory) > 0 {
		fmt.Println()
		fmt.Println("Recent runs:")
		for _, r := range stats.RunHistory {
			fmt.Printf("  %-18s %-8s month %-3d doom %5.1f  %s\n",
				r.DeviceID, r.Outcome, r.Months, r.DoomLevel, humanize.Time(r.FinishedAt))
		}
	}

	fmt.Println()
	fmt.Printf("Achievements (%d/%d):\n", len(stats.Achievements), len(achievements.Catalog()))
	for _, def := range achievements.Catalog() {
		mark := "[ ]"
		if stats.HasAchievement(def.ID) {
			mark = "[x]"
		}
		fmt.Printf("  %s %-18s %s\n", mark, def.Title, def.Description)
	}
	return nil
}
