// Package autoplay drives an engine with a fixed, deterministic policy. It
// backs the simulate command and end-to-end tests.
package autoplay

import (
	"slices"

	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/engine"
)

// Strategy is a scripted player.
type Strategy struct {
	DeviceID      string            // Preferred device; the first available one when missing
	Funding       core.FundingLevel // Funding set before the run starts; empty keeps the default
	ShipBelowDoom float64           // Ship while doom is under this value; 0 never ships
	CostPerDoom   float64           // Budget units worth one doom point when ranking choices
	MaxTurns      int               // Safety cap on commands issued by Play
}

// DefaultStrategy funds compliance fully and ships only early in a run.
func DefaultStrategy() Strategy {
	return Strategy{
		Funding:       core.FundingFull,
		ShipBelowDoom: 15,
		CostPerDoom:   10_000,
		MaxTurns:      1_000,
	}
}

// Result summarises a scripted run.
type Result struct {
	Final   core.Snapshot
	Turns   int
	Shipped int
	Crises  int
}

// Play issues commands until the run ends or MaxTurns is reached.
func (s Strategy) Play(e *engine.Engine) Result {
	var res Result
	limit := s.MaxTurns
	if limit <= 0 {
		limit = DefaultStrategy().MaxTurns
	}
	for res.Turns < limit {
		act, ok := s.Next(e)
		if !ok {
			break
		}
		act.apply(e)
		res.Turns++
		switch act.Kind {
		case ActionShip:
			res.Shipped++
		case ActionResolve:
			res.Crises++
		}
	}
	res.Final = e.State()
	return res
}

// ActionKind names a command the strategy can issue.
type ActionKind string

const (
	ActionInitialize ActionKind = "initialize"
	ActionSelect     ActionKind = "select_device"
	ActionFunding    ActionKind = "set_funding"
	ActionStart      ActionKind = "start_simulation"
	ActionShip       ActionKind = "ship_product"
	ActionAdvance    ActionKind = "advance_time"
	ActionResolve    ActionKind = "resolve_crisis"
)

// Action is one decision. Arg carries the device, funding level or choice id.
type Action struct {
	Kind ActionKind
	Arg  string
}

func (a Action) apply(e *engine.Engine) {
	switch a.Kind {
	case ActionInitialize:
		e.Initialize()
	case ActionSelect:
		e.SelectDevice(a.Arg)
	case ActionFunding:
		e.SetFundingLevel(core.FundingLevel(a.Arg))
	case ActionStart:
		e.StartSimulation()
	case ActionShip:
		e.ShipProduct()
	case ActionAdvance:
		e.AdvanceTime(1)
	case ActionResolve:
		e.ResolveCrisis(a.Arg)
	}
}

// Next returns the strategy's move for the engine's current state. ok is
// false once the run is over.
func (s Strategy) Next(e *engine.Engine) (Action, bool) {
	snap := e.State()
	switch snap.Phase {
	case core.PhaseSplash, core.PhaseSharedResult:
		return Action{Kind: ActionInitialize}, true
	case core.PhaseSetup:
		if snap.SelectedDevice == nil {
			id, ok := s.pickDevice(snap.AvailableDevices)
			if !ok {
				return Action{}, false
			}
			return Action{Kind: ActionSelect, Arg: id}, true
		}
		if s.Funding.Valid() && s.Funding != snap.FundingLevel {
			return Action{Kind: ActionFunding, Arg: string(s.Funding)}, true
		}
		return Action{Kind: ActionStart}, true
	case core.PhaseCrisis:
		if snap.CurrentCrisis == nil || len(snap.CurrentCrisis.Choices) == 0 {
			return Action{}, false
		}
		choice := ChooseResolution(*snap.CurrentCrisis, s.CostPerDoom)
		return Action{Kind: ActionResolve, Arg: choice.ID}, true
	case core.PhaseSimulation:
		if snap.DoomLevel < s.ShipBelowDoom && e.CanShip() {
			return Action{Kind: ActionShip}, true
		}
		return Action{Kind: ActionAdvance}, true
	}
	return Action{}, false
}

func (s Strategy) pickDevice(devices []core.Device) (string, bool) {
	if len(devices) == 0 {
		return "", false
	}
	if s.DeviceID != "" && slices.ContainsFunc(devices, func(d core.Device) bool { return d.ID == s.DeviceID }) {
		return s.DeviceID, true
	}
	return devices[0].ID, true
}

// ChooseResolution picks the choice with the lowest doom impact plus cost
// expressed in doom points. Ties go to the earlier choice. c must have at
// least one choice.
func ChooseResolution(c core.Crisis, costPerDoom float64) core.Choice {
	best := c.Choices[0]
	bestScore := choiceScore(best, costPerDoom)
	for _, ch := range c.Choices[1:] {
		if score := choiceScore(ch, costPerDoom); score < bestScore {
			best, bestScore = ch, score
		}
	}
	return best
}

func choiceScore(ch core.Choice, costPerDoom float64) float64 {
	score := ch.DoomImpact
	if costPerDoom > 0 {
		score += float64(ch.Cost) / costPerDoom
	}
	return score
}
