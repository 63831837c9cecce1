package engine

import "github.com/vovakirdan/doomcycle/internal/core"

// analyse attributes the doom of a failed run to its largest source.
// Ties favour crises, then budget.
func (e *Engine) analyse(s core.Snapshot) core.DeathAnalysis {
	da := core.DeathAnalysis{
		Month:            s.TimelineMonth,
		DoomFromBudget:   e.doom.budget,
		DoomFromShipping: e.doom.shipping,
	}

	worst := -1.0
	for _, h := range s.History {
		da.DoomFromCrises += h.DoomIncrease
		if h.DoomIncrease > worst {
			worst = h.DoomIncrease
			da.WorstEventID = h.EventID
		}
	}

	da.Cause = core.CauseCrisisFallout
	top := da.DoomFromCrises
	if da.DoomFromBudget > top {
		da.Cause, top = core.CauseBudgetCollapse, da.DoomFromBudget
	}
	if da.DoomFromShipping > top {
		da.Cause = core.CauseRecklessShipping
	}
	return da
}
