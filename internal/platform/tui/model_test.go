package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/doomcycle/internal/catalog"
	"github.com/vovakirdan/doomcycle/internal/config"
	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/engine"
	"github.com/vovakirdan/doomcycle/internal/session"
)

func newTestModel(t *testing.T, months int) Model {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() failed: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Events.MaxProbability = 0
	if months > 0 {
		cfg.Timeline.TotalMonths = months
	}
	e := engine.New(cfg, cat, engine.WithSeed(11))
	host, err := session.New(e, nil, session.Options{Profile: "tester"})
	if err != nil {
		t.Fatalf("session.New() failed: %v", err)
	}
	host.Start("")
	return NewModel(host, Options{Width: 100, Height: 40})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestSetupSelectsHighlightedDevice(t *testing.T) {
	m := newTestModel(t, 0)
	e := m.host.Engine()
	want := e.State().AvailableDevices[1].ID

	if !strings.Contains(m.View(), "Pick a device") {
		t.Fatalf("setup screen not rendered:\n%s", m.View())
	}
	m = update(m, downKey)
	m = update(m, enterKey)

	snap := e.State()
	if snap.Phase != core.PhaseSimulation {
		t.Fatalf("expected simulation, got %s", snap.Phase)
	}
	if snap.DeviceID() != want {
		t.Errorf("selected %s, expected %s", snap.DeviceID(), want)
	}
	if m.cursor != 0 {
		t.Errorf("cursor not reset after phase change: %d", m.cursor)
	}
}

func TestTickAdvancesUnlessHeld(t *testing.T) {
	m := newTestModel(t, 0)
	m = update(m, enterKey)
	e := m.host.Engine()

	m = update(m, TickMsg{})
	if got := e.State().TimelineMonth; got != 1 {
		t.Fatalf("month = %d after one tick", got)
	}

	m = update(m, runeKey('p'))
	m = update(m, TickMsg{})
	if got := e.State().TimelineMonth; got != 1 {
		t.Errorf("held clock advanced to %d", got)
	}
	if !strings.Contains(m.View(), "(paused)") {
		t.Error("paused marker missing")
	}

	m = update(m, runeKey('p'))
	update(m, TickMsg{})
	if got := e.State().TimelineMonth; got != 2 {
		t.Errorf("month = %d after resuming", got)
	}
}

func TestShipAndFundingKeys(t *testing.T) {
	m := newTestModel(t, 0)
	m = update(m, enterKey)
	e := m.host.Engine()
	before := e.State()

	m = update(m, runeKey('s'))
	after := e.State()
	if after.TimelineMonth != before.TimelineMonth+1 || after.DoomLevel <= before.DoomLevel {
		t.Errorf("ship did not apply: %+v", after)
	}
	if m.status == "" {
		t.Error("expected a status line after shipping")
	}

	update(m, runeKey('f'))
	if got := e.State().FundingLevel; got != before.FundingLevel.Next() {
		t.Errorf("funding = %s, expected %s", got, before.FundingLevel.Next())
	}
}

func TestCrisisChoiceByCursor(t *testing.T) {
	m := newTestModel(t, 0)
	m = update(m, enterKey)
	e := m.host.Engine()

	e.TriggerCrisis("cve-disclosure")
	m = update(m, TickMsg{})
	crisis := e.State().CurrentCrisis
	if crisis == nil {
		t.Fatal("crisis not open")
	}
	if !strings.Contains(m.View(), "CRISIS: "+crisis.Title) {
		t.Errorf("crisis panel missing:\n%s", m.View())
	}

	m = update(m, downKey)
	update(m, enterKey)

	snap := e.State()
	if snap.Phase != core.PhaseSimulation || len(snap.History) != 1 {
		t.Fatalf("crisis not resolved: phase %s, history %d", snap.Phase, len(snap.History))
	}
	if snap.History[0].ChoiceID != crisis.Choices[1].ID {
		t.Errorf("resolved with %s, expected %s", snap.History[0].ChoiceID, crisis.Choices[1].ID)
	}
}

func TestVictoryShareAndReset(t *testing.T) {
	m := newTestModel(t, 2)
	m = update(m, enterKey)
	e := m.host.Engine()

	m = update(m, TickMsg{})
	m = update(m, TickMsg{})
	if e.State().Phase != core.PhaseVictory {
		t.Fatalf("expected victory, got %s", e.State().Phase)
	}
	if !strings.Contains(m.View(), "END OF SUPPORT REACHED") {
		t.Errorf("victory screen missing:\n%s", m.View())
	}

	m = update(m, runeKey('x'))
	if !strings.Contains(m.status, "result=") {
		t.Errorf("status = %q, expected a result link", m.status)
	}

	update(m, runeKey('r'))
	if got := e.State().Phase; got != core.PhaseSetup {
		t.Errorf("phase after reset = %s", got)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, 0)
	next, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "$0"},
		{500000, "$500,000"},
		{-1234567, "-$1,234,567"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMeterShowsValue(t *testing.T) {
	for _, v := range []float64{-5, 0, 42.25, 100, 140} {
		got := meter(v, true)
		if !strings.Contains(got, "░") && v < 100 {
			t.Errorf("meter(%g) has no empty cells: %q", v, got)
		}
	}
	if !strings.Contains(meter(42.25, false), "42.2") && !strings.Contains(meter(42.25, false), "42.3") {
		t.Errorf("meter value missing: %q", meter(42.25, false))
	}
}
