package core

import "slices"

// Phase identifies where the game is in its lifecycle.
type Phase string

const (
	PhaseSplash       Phase = "splash"
	PhaseSetup        Phase = "setup"
	PhaseSimulation   Phase = "simulation"
	PhaseCrisis       Phase = "crisis"
	PhaseAutopsy      Phase = "autopsy"
	PhaseVictory      Phase = "victory"
	PhaseSharedResult Phase = "shared_result"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseSplash, PhaseSetup, PhaseSimulation, PhaseCrisis,
		PhaseAutopsy, PhaseVictory, PhaseSharedResult:
		return true
	}
	return false
}

// Terminal reports whether the phase ends a run.
func (p Phase) Terminal() bool {
	return p == PhaseAutopsy || p == PhaseVictory
}

// InRun reports whether simulated time is running or frozen by a crisis.
func (p Phase) InRun() bool {
	return p == PhaseSimulation || p == PhaseCrisis
}

// FundingLevel is the player's compliance investment tier.
type FundingLevel string

const (
	FundingFull    FundingLevel = "full"
	FundingPartial FundingLevel = "partial"
	FundingNone    FundingLevel = "none"
)

// FundingLevels lists the tiers in display order.
var FundingLevels = []FundingLevel{FundingFull, FundingPartial, FundingNone}

// Valid reports whether f is a known funding tier.
func (f FundingLevel) Valid() bool {
	return f == FundingFull || f == FundingPartial || f == FundingNone
}

// Next cycles to the following funding tier.
func (f FundingLevel) Next() FundingLevel {
	switch f {
	case FundingFull:
		return FundingPartial
	case FundingPartial:
		return FundingNone
	default:
		return FundingFull
	}
}

// Score bounds shared by doom and compliance.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// NoLastEvent marks a run in which no event has fired yet.
const NoLastEvent = -1

// HistoryEntry records one resolved crisis.
type HistoryEntry struct {
	Month        int     `json:"month"`
	EventID      string  `json:"eventId"`
	ChoiceID     string  `json:"choiceId"`
	DoomIncrease float64 `json:"doomIncrease"`
	Cost         int64   `json:"cost"`
}

// Deflection records a high-risk month that passed without a crisis.
type Deflection struct {
	Month       int     `json:"month"`
	Probability float64 `json:"probability"`
}

// Death causes reported by DeathAnalysis.
const (
	CauseCrisisFallout    = "crisis_fallout"
	CauseBudgetCollapse   = "budget_collapse"
	CauseRecklessShipping = "reckless_shipping"
)

// DeathAnalysis explains why a run ended in autopsy.
type DeathAnalysis struct {
	Cause            string  `json:"cause"`
	Month            int     `json:"month"`
	DoomFromCrises   float64 `json:"doomFromCrises"`
	DoomFromBudget   float64 `json:"doomFromBudget"`
	DoomFromShipping float64 `json:"doomFromShipping"`
	WorstEventID     string  `json:"worstEventId,omitempty"`
}

// Snapshot is the canonical game state. The engine builds a new value for
// every transition; callers always receive deep copies.
type Snapshot struct {
	Phase             Phase          `json:"phase"`
	TimelineMonth     int            `json:"timelineMonth"`
	Budget            int64          `json:"budget"`
	DoomLevel         float64        `json:"doomLevel"`
	ComplianceLevel   float64        `json:"complianceLevel"`
	FundingLevel      FundingLevel   `json:"fundingLevel"`
	SelectedDevice    *Device        `json:"selectedDevice,omitempty"`
	AvailableDevices  []Device       `json:"availableDevices"`
	ActiveTags        []string       `json:"activeTags"`
	CurrentCrisis     *Crisis        `json:"currentCrisis,omitempty"`
	History           []HistoryEntry `json:"history"`
	ShieldDeflections []Deflection   `json:"shieldDeflections"`
	LastEventMonth    int            `json:"lastEventMonth"`
	IsPaused          bool           `json:"isPaused"`
	DeathAnalysis     *DeathAnalysis `json:"deathAnalysis,omitempty"`
	Seed              int64          `json:"seed"`
	SharedResult      *ResultSummary `json:"sharedResult,omitempty"`
}

// NewSnapshot returns the splash-screen state for a seed.
func NewSnapshot(seed int64) Snapshot {
	return Snapshot{
		Phase:             PhaseSplash,
		FundingLevel:      FundingPartial,
		AvailableDevices:  []Device{},
		ActiveTags:        []string{},
		History:           []HistoryEntry{},
		ShieldDeflections: []Deflection{},
		LastEventMonth:    NoLastEvent,
		Seed:              seed,
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.SelectedDevice != nil {
		d := s.SelectedDevice.Clone()
		out.SelectedDevice = &d
	}
	out.AvailableDevices = make([]Device, len(s.AvailableDevices))
	for i, d := range s.AvailableDevices {
		out.AvailableDevices[i] = d.Clone()
	}
	out.ActiveTags = cloneStrings(s.ActiveTags)
	if s.CurrentCrisis != nil {
		c := s.CurrentCrisis.Clone()
		out.CurrentCrisis = &c
	}
	out.History = append(make([]HistoryEntry, 0, len(s.History)), s.History...)
	out.ShieldDeflections = append(make([]Deflection, 0, len(s.ShieldDeflections)), s.ShieldDeflections...)
	if s.DeathAnalysis != nil {
		da := *s.DeathAnalysis
		out.DeathAnalysis = &da
	}
	if s.SharedResult != nil {
		r := *s.SharedResult
		out.SharedResult = &r
	}
	return out
}

// HasTag reports whether the tag is active.
func (s Snapshot) HasTag(tag string) bool {
	return slices.Contains(s.ActiveTags, tag)
}

// DeviceID returns the selected device id, or "" before selection.
func (s Snapshot) DeviceID() string {
	if s.SelectedDevice == nil {
		return ""
	}
	return s.SelectedDevice.ID
}

// NormalizeTags returns a sorted, duplicate-free, non-nil copy of tags
// with empty strings removed.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// MergeTags adds and removes tags, keeping set semantics.
func MergeTags(tags, add, remove []string) []string {
	merged := append(cloneStrings(tags), add...)
	merged = slices.DeleteFunc(merged, func(t string) bool {
		return slices.Contains(remove, t)
	})
	return NormalizeTags(merged)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append(make([]string, 0, len(in)), in...)
}
