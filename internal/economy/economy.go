// Package economy holds the pure compliance, maintenance and budget-stress
// rules applied once per simulated month.
package economy

import (
	"math"
	"slices"

	"github.com/vovakirdan/doomcycle/internal/config"
	"github.com/vovakirdan/doomcycle/internal/core"
)

// Model applies the economic rules of a configuration.
type Model struct {
	cfg config.Config
}

// New creates a Model for cfg.
func New(cfg config.Config) Model {
	return Model{cfg: cfg}
}

// DriftCompliance moves compliance by the funding tier's monthly change.
func (m Model) DriftCompliance(level float64, funding core.FundingLevel, months int) float64 {
	if months <= 0 {
		return core.ClampScore(level)
	}
	change := m.cfg.Funding.Tier(funding).ComplianceChange
	return core.ClampScore(level + change*float64(months))
}

// EffectiveEndOfLife returns the month after which maintenance is billed at
// the legacy rate. Devices without an end-of-life month use the configured
// legacy threshold.
func (m Model) EffectiveEndOfLife(device core.Device, funding core.FundingLevel) int {
	eol := device.EndOfLifeMonth
	if eol <= 0 {
		eol = m.cfg.Economy.LegacyThresholdMonth
	}
	return max(0, eol-m.cfg.Funding.Tier(funding).EOLReduction)
}

// MonthlyMaintenanceCost is the maintenance debit for month.
func (m Model) MonthlyMaintenanceCost(device core.Device, month int, funding core.FundingLevel) int64 {
	cost := float64(device.MaintenanceCost) * m.cfg.Funding.Tier(funding).CostMultiplier
	if month > m.EffectiveEndOfLife(device, funding) {
		cost *= m.cfg.Economy.LegacyMultiplier
	}
	return int64(math.Round(cost))
}

// BudgetStressDoom is the doom added per month for a budget. Tiers are
// cumulative: every threshold the budget is below contributes.
func (m Model) BudgetStressDoom(budget int64) float64 {
	var doom float64
	for _, tier := range m.cfg.Economy.StressTiers {
		if budget < tier.Threshold {
			doom += tier.DoomPerMonth
		}
	}
	return doom
}

// ComplianceTags returns the system tags implied by the compliance level and
// the position on the timeline.
func (m Model) ComplianceTags(level float64, month, eol int) []string {
	c := m.cfg.Compliance
	var tags []string
	if level < c.WarningThreshold {
		tags = append(tags, c.WarningTag)
	}
	if level < c.CriticalThreshold {
		tags = append(tags, c.CriticalTag)
	}
	if eol > 0 && month >= eol {
		tags = append(tags, c.EndOfLifeTag)
	}
	return core.NormalizeTags(tags)
}

// SyncTags reconciles active tags with ComplianceTags. The compliance tags
// follow the level every month. The end-of-life tag is only added in the
// month the threshold is crossed, so a crisis choice can retire it.
func (m Model) SyncTags(tags []string, level float64, month, eol int) []string {
	c := m.cfg.Compliance
	desired := m.ComplianceTags(level, month, eol)

	var add, remove []string
	for _, tag := range []string{c.WarningTag, c.CriticalTag} {
		if slices.Contains(desired, tag) {
			add = append(add, tag)
		} else {
			remove = append(remove, tag)
		}
	}
	if month == eol && slices.Contains(desired, c.EndOfLifeTag) {
		add = append(add, c.EndOfLifeTag)
	}
	return core.MergeTags(tags, add, remove)
}
