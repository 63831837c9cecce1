// Package achievements evaluates unlockable achievements and folds finished
// runs into the cross-session stats.
package achievements

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/doomcycle/internal/core"
)

// Definition describes one achievement.
type Definition struct {
	ID          string
	Title       string
	Description string

	earned func(snap *core.Snapshot, stats core.GameStats) bool
}

var definitions = []Definition{
	{
		ID: "first_run", Title: "Hello, World", Description: "Finish your first run.",
		earned: func(_ *core.Snapshot, st core.GameStats) bool { return st.GamesPlayed >= 1 },
	},
	{
		ID: "veteran", Title: "Veteran", Description: "Finish 10 runs.",
		earned: func(_ *core.Snapshot, st core.GameStats) bool { return st.GamesPlayed >= 10 },
	},
	{
		ID: "first_victory", Title: "Survivor", Description: "Reach the end of the lifecycle.",
		earned: func(_ *core.Snapshot, st core.GameStats) bool { return st.GamesWon >= 1 },
	},
	{
		ID: "serial_survivor", Title: "Serial Survivor", Description: "Win 5 runs.",
		earned: func(_ *core.Snapshot, st core.GameStats) bool { return st.GamesWon >= 5 },
	},
	{
		ID: "long_haul", Title: "Long Haul", Description: "Survive 300 months in total.",
		earned: func(_ *core.Snapshot, st core.GameStats) bool { return st.TotalMonthsSurvived >= 300 },
	},
	{
		ID: "clean_sheet", Title: "Clean Sheet", Description: "Win with doom below 25.",
		earned: victory(func(s *core.Snapshot) bool { return s.DoomLevel < 25 }),
	},
	{
		ID: "fully_compliant", Title: "Fully Compliant", Description: "Win with compliance at 90 or above.",
		earned: victory(func(s *core.Snapshot) bool { return s.ComplianceLevel >= 90 }),
	},
	{
		ID: "in_the_black", Title: "In the Black", Description: "Win with money left in the bank.",
		earned: victory(func(s *core.Snapshot) bool { return s.Budget > 0 }),
	},
	{
		ID: "debt_survivor", Title: "Too Big to Fail", Description: "Win more than 100,000 in debt.",
		earned: victory(func(s *core.Snapshot) bool { return s.Budget < -100_000 }),
	},
	{
		ID: "quiet_quarter", Title: "Quiet Life", Description: "Win after three crises or fewer.",
		earned: victory(func(s *core.Snapshot) bool { return len(s.History) <= 3 }),
	},
	{
		ID: "near_miss", Title: "Shields Up", Description: "Win after deflecting 5 high-risk months.",
		earned: victory(func(s *core.Snapshot) bool { return len(s.ShieldDeflections) >= 5 }),
	},
	{
		ID: "crisis_magnet", Title: "Crisis Magnet", Description: "Face 10 crises in a single run.",
		earned: func(s *core.Snapshot, _ core.GameStats) bool { return s != nil && len(s.History) >= 10 },
	},
	{
		ID: "collector", Title: "Collector", Description: "Play 3 different devices.",
		earned: func(_ *core.Snapshot, st core.GameStats) bool { return distinctDevices(st) >= 3 },
	},
	{
		ID: "device_hopper", Title: "Device Hopper", Description: "Play 5 different devices.",
		earned: func(_ *core.Snapshot, st core.GameStats) bool { return distinctDevices(st) >= 5 },
	},
}

func victory(pred func(*core.Snapshot) bool) func(*core.Snapshot, core.GameStats) bool {
	return func(s *core.Snapshot, _ core.GameStats) bool {
		return s != nil && s.Phase == core.PhaseVictory && pred(s)
	}
}

// Catalog returns every achievement in display order.
func Catalog() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup finds an achievement definition by id.
func Lookup(id string) (Definition, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Evaluate returns the ids of achievements not yet in stats whose condition
// holds. A nil snap only unlocks achievements that depend on stats alone.
func Evaluate(snap *core.Snapshot, stats core.GameStats) []string {
	var out []string
	for _, d := range definitions {
		if stats.HasAchievement(d.ID) {
			continue
		}
		if d.earned(snap, stats) {
			out = append(out, d.ID)
		}
	}
	return out
}

// RecordGame folds a finished run into stats and returns the updated stats
// with the achievements it unlocked. Runs that have not ended and runs
// already counted are ignored. limit caps RunHistory; the returned
// achievement list never holds duplicates.
func RecordGame(stats core.GameStats, snap core.Snapshot, now time.Time, limit int) (core.GameStats, []string) {
	out := stats.Normalized()
	if !snap.Phase.Terminal() {
		return out, nil
	}
	id := RunID(snap)
	if out.HasRun(id) {
		return out, nil
	}

	out.GamesPlayed++
	out.RecordedRuns = append(out.RecordedRuns, id)
	if snap.Phase == core.PhaseVictory {
		out.GamesWon++
	}
	out.BestSurvivalMonths = max(out.BestSurvivalMonths, snap.TimelineMonth)
	out.TotalMonthsSurvived += snap.TimelineMonth
	out.LastPlayed = now

	rec := core.RunRecord{
		ID:              id,
		DeviceID:        snap.DeviceID(),
		Outcome:         snap.Phase,
		Months:          snap.TimelineMonth,
		Budget:          snap.Budget,
		DoomLevel:       snap.DoomLevel,
		ComplianceLevel: snap.ComplianceLevel,
		Crises:          len(snap.History),
		FinishedAt:      now,
	}
	out.RunHistory = append([]core.RunRecord{rec}, out.RunHistory...)
	if limit > 0 && len(out.RunHistory) > limit {
		out.RunHistory = out.RunHistory[:limit]
	}
	out.FavoriteDevice = favoriteDevice(out.RunHistory)

	earned := Evaluate(&snap, out)
	out.Achievements = append(out.Achievements, earned...)
	return out, earned
}

// RunID is a deterministic fingerprint of a finished run.
func RunID(snap core.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%s|%s|%d|%d|%g|%g", snap.Seed, snap.DeviceID(), snap.Phase,
		snap.TimelineMonth, snap.Budget, snap.DoomLevel, snap.ComplianceLevel)
	for _, h := range snap.History {
		fmt.Fprintf(&b, "|%d:%s:%s", h.Month, h.EventID, h.ChoiceID)
	}
	return uuid.NewSHA1(runNamespace, []byte(b.String())).String()
}

var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/vovakirdan/doomcycle/runs"))

// favoriteDevice is the most played device; ties go to the most recent.
func favoriteDevice(runs []core.RunRecord) string {
	counts := make(map[string]int)
	for _, r := range runs {
		if r.DeviceID != "" {
			counts[r.DeviceID]++
		}
	}
	best, bestCount := "", 0
	for _, r := range runs {
		if c := counts[r.DeviceID]; c > bestCount {
			best, bestCount = r.DeviceID, c
		}
	}
	return best
}

func distinctDevices(stats core.GameStats) int {
	seen := make(map[string]bool)
	for _, r := range stats.RunHistory {
		if r.DeviceID != "" {
			seen[r.DeviceID] = true
		}
	}
	return len(seen)
}
