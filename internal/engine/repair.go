package engine

import (
	"math"

	"github.com/vovakirdan/doomcycle/internal/core"
)

// repair returns a consistent copy of a persisted or shared snapshot.
//
//   - unknown phase -> splash
//   - crisis without a crisis -> simulation, unpaused
//   - crisis outside the crisis phase -> dropped
//   - crisis phase -> paused; any other phase -> unpaused
//   - crisis without choices -> refilled from the catalog or dropped
//   - simulation/crisis without a device -> fresh setup
//   - simulation/crisis at max doom or the final month -> autopsy/victory
//   - scores clamped, month capped at the timeline, tags sorted and unique,
//     nil collections emptied
func (e *Engine) repair(snap core.Snapshot) core.Snapshot {
	s := snap.Clone()

	if !s.Phase.Valid() {
		s.Phase = core.PhaseSplash
	}
	if !s.FundingLevel.Valid() {
		s.FundingLevel = e.cfg.Funding.Default
	}
	s.DoomLevel = sanitizeScore(s.DoomLevel)
	s.ComplianceLevel = sanitizeScore(s.ComplianceLevel)
	s.TimelineMonth = core.Clamp(s.TimelineMonth, 0, e.cfg.Timeline.TotalMonths)
	s.LastEventMonth = core.Clamp(s.LastEventMonth, core.NoLastEvent, s.TimelineMonth)
	s.ActiveTags = core.NormalizeTags(s.ActiveTags)

	if s.CurrentCrisis != nil && len(s.CurrentCrisis.Choices) == 0 {
		s.CurrentCrisis = e.refillCrisis(s.CurrentCrisis.ID)
	}

	if s.Phase == core.PhaseCrisis {
		if s.CurrentCrisis == nil {
			s.Phase = core.PhaseSimulation
		}
	} else {
		s.CurrentCrisis = nil
	}
	s.IsPaused = s.Phase == core.PhaseCrisis

	if s.Phase.InRun() && s.SelectedDevice == nil {
		e.logger.Info("restored run has no device, returning to setup")
		return e.setupSnapshot()
	}
	if s.Phase.InRun() {
		e.checkTerminal(&s)
	}

	switch s.Phase {
	case core.PhaseSetup:
		if len(s.AvailableDevices) == 0 {
			s.AvailableDevices = e.drawDevices()
		}
	case core.PhaseAutopsy:
		if s.DeathAnalysis == nil {
			analysis := e.analyse(s)
			s.DeathAnalysis = &analysis
		}
	case core.PhaseSharedResult:
		if s.SharedResult == nil {
			s.Phase = core.PhaseSplash
		}
	}
	if s.Phase != core.PhaseAutopsy {
		s.DeathAnalysis = nil
	}
	return s
}

func (e *Engine) refillCrisis(id string) *core.Crisis {
	ev, ok := e.provider.EventByID(id)
	if !ok || len(ev.Choices) == 0 {
		return nil
	}
	c := ev.Crisis()
	return &c
}

func sanitizeScore(v float64) float64 {
	if math.IsNaN(v) {
		return core.MinScore
	}
	return core.ClampScore(v)
}
