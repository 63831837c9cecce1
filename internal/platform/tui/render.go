package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/doomcycle/internal/achievements"
	"github.com/vovakirdan/doomcycle/internal/core"
)

const meterWidth = 30

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	crisisStyle   = panelStyle.BorderForeground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dangerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (m Model) render() string {
	snap := m.host.Engine().State()
	total := m.host.Engine().Config().Timeline.TotalMonths

	var body string
	switch snap.Phase {
	case core.PhaseSplash:
		body = renderSplash(m.host.Stats())
	case core.PhaseSetup:
		body = renderSetup(snap, m.cursor)
	case core.PhaseSimulation:
		body = renderDashboard(snap, total, m.held)
	case core.PhaseCrisis:
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderDashboard(snap, total, false),
			renderCrisis(*snap.CurrentCrisis, m.cursor))
	case core.PhaseAutopsy:
		body = renderAutopsy(snap, m.host.LastEarned())
	case core.PhaseVictory:
		body = renderVictory(snap, m.host.LastEarned())
	case core.PhaseSharedResult:
		body = renderSharedResult(snap.SharedResult)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("DOOMCYCLE"))
	b.WriteString(dimStyle.Render("  profile " + m.host.Profile()))
	b.WriteString("\n\n")
	b.WriteString(body)
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func renderSplash(stats core.GameStats) string {
	var b strings.Builder
	b.WriteString("Keep a connected device alive, secure and compliant until end of support.\n\n")
	if stats.GamesPlayed > 0 {
		fmt.Fprintf(&b, "Runs: %d   Wins: %d   Best: %d months\n", stats.GamesPlayed, stats.GamesWon, stats.BestSurvivalMonths)
		if !stats.LastPlayed.IsZero() {
			fmt.Fprintf(&b, "Last played %s\n", humanize.Time(stats.LastPlayed))
		}
		b.WriteString("\n")
	}
	b.WriteString(okStyle.Render("Press enter to start."))
	return b.String()
}

func renderSetup(snap core.Snapshot, cursor int) string {
	var b strings.Builder
	b.WriteString("Pick a device to support:\n\n")
	for i, d := range snap.AvailableDevices {
		line := fmt.Sprintf("%-20s %-10s budget %s, upkeep %s/mo, EOL month %d",
			d.Name, d.Category, formatMoney(d.InitialBudget), formatMoney(d.MaintenanceCost), d.EndOfLifeMonth)
		if i == cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nCompliance funding: %s", snap.FundingLevel)
	return panelStyle.Render(b.String())
}

func renderDashboard(snap core.Snapshot, total int, held bool) string {
	var b strings.Builder
	clock := fmt.Sprintf("Month %d/%d", snap.TimelineMonth, total)
	if held {
		clock += dimStyle.Render("  (paused)")
	}
	name := ""
	if snap.SelectedDevice != nil {
		name = snap.SelectedDevice.Name
	}
	fmt.Fprintf(&b, "%s   %s\n", clock, name)
	fmt.Fprintf(&b, "Budget      %s\n", moneyStyle(snap.Budget).Render(formatMoney(snap.Budget)))
	fmt.Fprintf(&b, "Doom        %s\n", meter(snap.DoomLevel, true))
	fmt.Fprintf(&b, "Compliance  %s\n", meter(snap.ComplianceLevel, false))
	fmt.Fprintf(&b, "Funding     %s\n", snap.FundingLevel)
	if len(snap.ActiveTags) > 0 {
		tags := make([]string, len(snap.ActiveTags))
		for i, t := range snap.ActiveTags {
			tags[i] = tagStyle.Render(t)
		}
		fmt.Fprintf(&b, "Tags        %s\n", strings.Join(tags, " "))
	}
	if n := len(snap.History); n > 0 {
		last := snap.History[n-1]
		fmt.Fprintf(&b, "Last crisis %s (month %d, %s)", last.EventID, last.Month, last.ChoiceID)
	} else {
		b.WriteString(dimStyle.Render("No crises yet."))
	}
	return panelStyle.Render(b.String())
}

func renderCrisis(c core.Crisis, cursor int) string {
	var b strings.Builder
	b.WriteString(dangerStyle.Bold(true).Render("CRISIS: " + c.Title))
	b.WriteString("\n")
	b.WriteString(c.Description)
	b.WriteString("\n\n")
	for i, ch := range c.Choices {
		line := fmt.Sprintf("%s  (cost %s, doom %+g)", ch.Label, formatMoney(ch.Cost), ch.DoomImpact)
		if i == cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return crisisStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderAutopsy(snap core.Snapshot, earned []string) string {
	var b strings.Builder
	b.WriteString(dangerStyle.Bold(true).Render("AUTOPSY"))
	fmt.Fprintf(&b, "\nThe product died in month %d.\n", snap.TimelineMonth)
	if da := snap.DeathAnalysis; da != nil {
		fmt.Fprintf(&b, "Cause: %s\n", causeText(da.Cause))
		fmt.Fprintf(&b, "Doom from crises %.1f, budget stress %.1f, shipping %.1f\n",
			da.DoomFromCrises, da.DoomFromBudget, da.DoomFromShipping)
		if da.WorstEventID != "" {
			fmt.Fprintf(&b, "Worst crisis: %s\n", da.WorstEventID)
		}
	}
	b.WriteString(renderEarned(earned))
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderVictory(snap core.Snapshot, earned []string) string {
	var b strings.Builder
	b.WriteString(okStyle.Bold(true).Render("END OF SUPPORT REACHED"))
	fmt.Fprintf(&b, "\nSurvived %d months with %s left, doom %.1f, compliance %.1f.\n",
		snap.TimelineMonth, formatMoney(snap.Budget), snap.DoomLevel, snap.ComplianceLevel)
	fmt.Fprintf(&b, "%d crises handled, %d high-risk months deflected.\n", len(snap.History), len(snap.ShieldDeflections))
	b.WriteString(renderEarned(earned))
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderEarned(earned []string) string {
	if len(earned) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nUnlocked:\n")
	for _, id := range earned {
		if def, ok := achievements.Lookup(id); ok {
			fmt.Fprintf(&b, "  * %s: %s\n", def.Title, def.Description)
		}
	}
	return b.String()
}

func renderSharedResult(r *core.ResultSummary) string {
	if r == nil {
		return panelStyle.Render("Nothing to show.")
	}
	verdict := okStyle.Render("survived")
	if r.Outcome == core.PhaseAutopsy {
		verdict = dangerStyle.Render("died")
	}
	body := fmt.Sprintf("A friend's %s %s at month %d.\nBudget %s, doom %.1f, compliance %.1f.\n\nPress enter to play your own run.",
		r.DeviceID, verdict, r.Month, formatMoney(r.Budget), r.DoomLevel, r.ComplianceLevel)
	return panelStyle.Render(body)
}

func causeText(cause string) string {
	switch cause {
	case core.CauseCrisisFallout:
		return "crisis fallout"
	case core.CauseBudgetCollapse:
		return "budget collapse"
	case core.CauseRecklessShipping:
		return "reckless shipping"
	}
	return cause
}

// formatMoney renders whole currency units with thousands separators.
func formatMoney(v int64) string {
	if v < 0 {
		return "-$" + humanize.Comma(-v)
	}
	return "$" + humanize.Comma(v)
}

func moneyStyle(v int64) lipgloss.Style {
	if v < 0 {
		return dangerStyle
	}
	return okStyle
}

// meter draws a 0-100 score bar. highIsBad flips the colour scale.
func meter(v float64, highIsBad bool) string {
	filled := int(math.Round(v / core.MaxScore * meterWidth))
	filled = min(max(filled, 0), meterWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)

	risk := v
	if !highIsBad {
		risk = core.MaxScore - v
	}
	style := okStyle
	switch {
	case risk >= 70:
		style = dangerStyle
	case risk >= 40:
		style = warnStyle
	}
	return style.Render(bar) + fmt.Sprintf(" %5.1f", v)
}
