package autoplay

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/doomcycle/internal/catalog"
	"github.com/vovakirdan/doomcycle/internal/config"
	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/engine"
)

func newEngine(t *testing.T, cfg config.Config, seed int64) *engine.Engine {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() failed: %v", err)
	}
	return engine.New(cfg, cat, engine.WithSeed(seed))
}

func TestPlayReachesTerminalPhase(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234} {
		e := newEngine(t, config.DefaultConfig(), seed)
		res := DefaultStrategy().Play(e)
		if !res.Final.Phase.Terminal() {
			t.Errorf("seed %d: final phase %s", seed, res.Final.Phase)
		}
		if res.Crises != len(res.Final.History) {
			t.Errorf("seed %d: resolved %d crises, history has %d", seed, res.Crises, len(res.Final.History))
		}
	}
}

func TestPlayIsDeterministic(t *testing.T) {
	a := DefaultStrategy().Play(newEngine(t, config.DefaultConfig(), 99))
	b := DefaultStrategy().Play(newEngine(t, config.DefaultConfig(), 99))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different runs:\n%+v\n%+v", a.Final, b.Final)
	}
}

func TestPlayQuietRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Events.MaxProbability = 0
	e := newEngine(t, cfg, 5)

	s := DefaultStrategy()
	s.DeviceID = "smart-thermostat"
	res := s.Play(e)

	if res.Final.Phase != core.PhaseVictory {
		t.Fatalf("expected victory, got %s (doom %.1f)", res.Final.Phase, res.Final.DoomLevel)
	}
	if res.Final.DeviceID() != "smart-thermostat" {
		t.Errorf("device = %q", res.Final.DeviceID())
	}
	if res.Final.FundingLevel != core.FundingFull {
		t.Errorf("funding = %s", res.Final.FundingLevel)
	}
	// 0 -> 5 -> 10 -> 15 doom, then shipping stops.
	if res.Shipped != 3 {
		t.Errorf("shipped %d times, expected 3", res.Shipped)
	}
	if res.Final.TimelineMonth != cfg.Timeline.TotalMonths {
		t.Errorf("month = %d", res.Final.TimelineMonth)
	}
}

func TestPlayRespectsTurnCap(t *testing.T) {
	s := DefaultStrategy()
	s.MaxTurns = 2
	res := s.Play(newEngine(t, config.DefaultConfig(), 1))
	if res.Turns != 2 {
		t.Errorf("turns = %d", res.Turns)
	}
	if res.Final.Phase != core.PhaseSetup || res.Final.SelectedDevice == nil {
		t.Errorf("expected setup with a device, got %s", res.Final.Phase)
	}
}

func TestNextStopsAfterRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timeline.TotalMonths = 1
	cfg.Events.MaxProbability = 0
	e := newEngine(t, cfg, 3)
	DefaultStrategy().Play(e)

	if _, ok := DefaultStrategy().Next(e); ok {
		t.Error("Next should report no move after the run ended")
	}
}

func TestChooseResolution(t *testing.T) {
	crisis := core.Crisis{
		ID: "outage",
		Choices: []core.Choice{
			{ID: "pay", Cost: 100_000, DoomImpact: 2},
			{ID: "ignore", Cost: 0, DoomImpact: 9},
			{ID: "cheap", Cost: 20_000, DoomImpact: 5},
		},
	}
	tests := []struct {
		name        string
		costPerDoom float64
		want        string
	}{
		{"doom only", 0, "pay"},
		{"expensive money", 2_000, "ignore"},
		{"balanced", 10_000, "cheap"},
		{"cheap money", 100_000, "pay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseResolution(crisis, tt.costPerDoom); got.ID != tt.want {
				t.Errorf("ChooseResolution() = %s, want %s", got.ID, tt.want)
			}
		})
	}

	tie := core.Crisis{Choices: []core.Choice{{ID: "a", DoomImpact: 1}, {ID: "b", DoomImpact: 1}}}
	if got := ChooseResolution(tie, 0); got.ID != "a" {
		t.Errorf("tie went to %s", got.ID)
	}
}
