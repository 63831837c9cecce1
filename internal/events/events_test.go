package events

import (
	"math"
	"testing"

	"github.com/vovakirdan/doomcycle/internal/config"
	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/random"
)

type stubProvider []core.Event

func (p stubProvider) EligibleEvents(tags []string, category string) []core.Event {
	return append([]core.Event(nil), p...)
}

func TestProbability(t *testing.T) {
	cfg := config.DefaultConfig().Events

	tests := []struct {
		name  string
		month int
		last  int
		doom  float64
		tags  []string
		want  float64
	}{
		{"base", 5, core.NoLastEvent, 0, nil, 0.05},
		{"doom term", 5, core.NoLastEvent, 50, nil, 0.15},
		{"risky tags", 5, core.NoLastEvent, 0, []string{"non_compliant", "end_of_life", "harmless"}, 0.11},
		{"doom and tags", 5, core.NoLastEvent, 100, []string{"non_compliant", "critical_vulnerability", "end_of_life", "legacy_protocol"}, 0.37},
		{"spacing gate", 5, 4, 90, nil, 0},
		{"gate lifted", 6, 4, 0, nil, 0.05},
		{"month zero without events", 0, core.NoLastEvent, 0, nil, 0.05},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Probability(cfg, tc.month, tc.last, tc.doom, tc.tags)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Probability = %g, expected %g", got, tc.want)
			}
		})
	}

	cfg.MaxProbability = 0.1
	if got := Probability(cfg, 5, core.NoLastEvent, 100, nil); got != 0.1 {
		t.Errorf("expected max probability cap 0.1, got %g", got)
	}
}

func TestRollDeterministic(t *testing.T) {
	a := random.New(9)
	b := random.New(9)
	for i := 0; i < 50; i++ {
		fa, da := Roll(a, 0.3)
		fb, db := Roll(b, 0.3)
		if fa != fb || da != db {
			t.Fatalf("roll %d diverged", i)
		}
	}
	if fired, _ := Roll(random.New(1), 0); fired {
		t.Error("zero probability must never fire")
	}
}

func TestShouldDeflect(t *testing.T) {
	cfg := config.DefaultConfig().Events

	if !ShouldDeflect(cfg, 0.25, false) {
		t.Error("quiet high-risk month should deflect")
	}
	if ShouldDeflect(cfg, 0.25, true) {
		t.Error("fired month is not a deflection")
	}
	if ShouldDeflect(cfg, 0.1, false) {
		t.Error("low-risk month is not a deflection")
	}
	cfg.TrackDeflections = false
	if ShouldDeflect(cfg, 0.5, false) {
		t.Error("tracking disabled")
	}
}

func TestCandidatesFilters(t *testing.T) {
	provider := stubProvider{
		{ID: "early", Choices: []core.Choice{{ID: "a"}}},
		{ID: "late", MinMonth: 20, Choices: []core.Choice{{ID: "a"}}},
		{ID: "once", Once: true, Choices: []core.Choice{{ID: "a"}}},
	}
	snap := core.NewSnapshot(1)
	snap.SelectedDevice = &core.Device{ID: "d", Category: "home"}
	snap.TimelineMonth = 10
	snap.History = []core.HistoryEntry{{Month: 3, EventID: "once", ChoiceID: "a"}}

	got := Candidates(provider, snap)
	if len(got) != 1 || got[0].ID != "early" {
		t.Errorf("Candidates = %v, expected only early", got)
	}

	snap.SelectedDevice = nil
	if got := Candidates(provider, snap); got != nil {
		t.Errorf("no device should yield no candidates, got %v", got)
	}
}

func TestSelectWeightedAndEmpty(t *testing.T) {
	snap := core.NewSnapshot(1)
	snap.SelectedDevice = &core.Device{ID: "d", Category: "home"}

	if _, ok := Select(stubProvider{}, random.New(1), snap); ok {
		t.Error("empty provider should not select")
	}

	provider := stubProvider{
		{ID: "rare", Weight: 1},
		{ID: "common", Weight: 9},
	}
	src := random.New(77)
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		e, ok := Select(provider, src, snap)
		if !ok {
			t.Fatal("expected a selection")
		}
		counts[e.ID]++
	}
	if counts["common"] < counts["rare"]*4 {
		t.Errorf("weights not respected: %v", counts)
	}
}
