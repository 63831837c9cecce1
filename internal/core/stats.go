package core

import (
	"slices"
	"time"
)

// RunRecord summarises one finished run for the cross-session history.
type RunRecord struct {
	ID              string    `json:"id"`
	DeviceID        string    `json:"deviceId"`
	Outcome         Phase     `json:"outcome"`
	Months          int       `json:"months"`
	Budget          int64     `json:"budget"`
	DoomLevel       float64   `json:"doomLevel"`
	ComplianceLevel float64   `json:"complianceLevel"`
	Crises          int       `json:"crises"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// GameStats holds counters that survive across sessions.
type GameStats struct {
	GamesPlayed         int         `json:"gamesPlayed"`
	GamesWon            int         `json:"gamesWon"`
	BestSurvivalMonths  int         `json:"bestSurvivalMonths"`
	TotalMonthsSurvived int         `json:"totalMonthsSurvived"`
	FavoriteDevice      string      `json:"favoriteDevice,omitempty"`
	LastPlayed          time.Time   `json:"lastPlayed,omitzero"`
	Achievements        []string    `json:"achievements"`
	RunHistory          []RunRecord `json:"runHistory"`
	// RecordedRuns holds the id of every run ever counted, including runs
	// that have left the capped RunHistory.
	RecordedRuns []string `json:"recordedRuns"`
}

// NewGameStats returns empty stats with non-nil collections.
func NewGameStats() GameStats {
	return GameStats{
		Achievements: []string{},
		RunHistory:   []RunRecord{},
		RecordedRuns: []string{},
	}
}

// Clone returns a deep copy of the stats.
func (s GameStats) Clone() GameStats {
	out := s
	out.Achievements = cloneStrings(s.Achievements)
	out.RunHistory = append(make([]RunRecord, 0, len(s.RunHistory)), s.RunHistory...)
	out.RecordedRuns = cloneStrings(s.RecordedRuns)
	return out
}

// Normalized returns a deep copy with duplicate achievement and run ids
// removed, keeping the first occurrence of each.
func (s GameStats) Normalized() GameStats {
	out := s.Clone()
	out.Achievements = uniqueInOrder(out.Achievements)
	out.RecordedRuns = uniqueInOrder(out.RecordedRuns)
	return out
}

// HasAchievement reports whether id has been earned.
func (s GameStats) HasAchievement(id string) bool {
	return slices.Contains(s.Achievements, id)
}

// HasRun reports whether a run with this id is already recorded.
func (s GameStats) HasRun(id string) bool {
	return slices.Contains(s.RecordedRuns, id) ||
		slices.ContainsFunc(s.RunHistory, func(r RunRecord) bool { return r.ID == id })
}

func uniqueInOrder(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ResultSummary is the minimal shareable outcome of a run.
type ResultSummary struct {
	Outcome         Phase   `json:"outcome"`
	Budget          int64   `json:"budget"`
	DoomLevel       float64 `json:"doomLevel"`
	ComplianceLevel float64 `json:"complianceLevel"`
	Month           int     `json:"month"`
	DeviceID        string  `json:"deviceId"`
	Language        string  `json:"language"`
}
