// Package events decides when a crisis fires and which one.
package events

import (
	"slices"

	"github.com/vovakirdan/doomcycle/internal/config"
	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/random"
)

// Provider supplies the events eligible for a tag set and device category.
type Provider interface {
	EligibleEvents(tags []string, category string) []core.Event
}

// Probability returns the chance that an event fires this month.
//
// It is zero inside the spacing window after the last event, otherwise
// min(MaxProbability, Base + doom/DoomDivisor + RiskyTagBoost * risky tags).
func Probability(cfg config.EventsConfig, month, lastEventMonth int, doom float64, tags []string) float64 {
	if lastEventMonth != core.NoLastEvent && month-lastEventMonth < cfg.MinSpacingMonths {
		return 0
	}
	risky := 0
	for _, tag := range tags {
		if slices.Contains(cfg.RiskyTags, tag) {
			risky++
		}
	}
	p := cfg.BaseProbability + doom/cfg.DoomDivisor + cfg.RiskyTagBoost*float64(risky)
	return core.ClampF(p, 0, cfg.MaxProbability)
}

// Roll draws once against p. The draw is consumed even when p is zero so
// the random stream stays aligned month by month.
func Roll(src *random.Source, p float64) (fired bool, draw float64) {
	return src.Chance(p)
}

// ShouldDeflect reports whether a quiet month counts as a shield deflection.
func ShouldDeflect(cfg config.EventsConfig, p float64, fired bool) bool {
	return cfg.TrackDeflections && !fired && p > 0 && p >= cfg.DeflectionThreshold
}

// Candidates returns the events that may fire for snap: provider-eligible,
// past their MinMonth, and not a Once event already in history.
func Candidates(provider Provider, snap core.Snapshot) []core.Event {
	if provider == nil || snap.SelectedDevice == nil {
		return nil
	}
	eligible := provider.EligibleEvents(snap.ActiveTags, snap.SelectedDevice.Category)
	out := eligible[:0:0]
	for _, e := range eligible {
		if e.MinMonth > snap.TimelineMonth {
			continue
		}
		if e.Once && seen(snap.History, e.ID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Select picks one candidate weighted by Weight (0 counts as 1).
func Select(provider Provider, src *random.Source, snap core.Snapshot) (core.Event, bool) {
	cands := Candidates(provider, snap)
	if len(cands) == 0 {
		return core.Event{}, false
	}
	weights := make([]float64, len(cands))
	for i, e := range cands {
		weights[i] = e.Weight
		if weights[i] == 0 {
			weights[i] = 1
		}
	}
	idx := src.WeightedIndex(weights)
	if idx < 0 {
		return core.Event{}, false
	}
	return cands[idx], true
}

func seen(history []core.HistoryEntry, id string) bool {
	return slices.ContainsFunc(history, func(h core.HistoryEntry) bool { return h.EventID == id })
}
