// Package engine implements the game state machine. It owns the live
// snapshot, applies every command to a copy, and publishes the result to
// subscribers. Invalid commands are ignored without publishing.
//
// An Engine is not safe for concurrent use.
package engine

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/doomcycle/internal/config"
	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/economy"
	"github.com/vovakirdan/doomcycle/internal/events"
	"github.com/vovakirdan/doomcycle/internal/random"
)

// Provider is the catalog the engine draws devices and crises from.
type Provider interface {
	Devices() []core.Device
	EventByID(id string) (core.Event, bool)
	EligibleEvents(tags []string, category string) []core.Event
}

// Listener receives a deep copy of the snapshot after every change.
type Listener func(core.Snapshot)

// Option configures an Engine.
type Option func(*Engine)

// WithSeed sets the seed of the first run.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithLogger sets the logger for transitions and ignored commands.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type subscriber struct {
	id int
	fn Listener
}

// doomSources tracks where passive doom came from during the session.
// Crisis doom is recomputed from history.
type doomSources struct {
	budget   float64
	shipping float64
}

// Engine is the game state machine.
type Engine struct {
	cfg      config.Config
	provider Provider
	econ     economy.Model
	logger   *log.Logger

	seed  int64
	rng   *random.Source
	state core.Snapshot
	doom  doomSources

	subs       []subscriber
	nextSubID  int
	publishing bool
}

// New creates an engine in the splash phase.
func New(cfg config.Config, provider Provider, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		provider: provider,
		econ:     economy.New(cfg),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = random.New(e.seed)
	e.state = core.NewSnapshot(e.seed)
	e.state.FundingLevel = cfg.Funding.Default
	return e
}

// State returns a deep copy of the live snapshot.
func (e *Engine) State() core.Snapshot {
	return e.state.Clone()
}

// Seed returns the seed of the current run.
func (e *Engine) Seed() int64 {
	return e.seed
}

// Config returns the configuration the engine runs with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Subscribe registers l and returns a function that removes it.
// Listeners run synchronously in registration order.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.nextSubID++
	id := e.nextSubID
	e.subs = append(e.subs, subscriber{id: id, fn: l})
	return func() {
		e.subs = slices.DeleteFunc(e.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Initialize draws the setup device list and enters setup. It reseeds from
// the engine seed, so calling it twice yields the same state.
func (e *Engine) Initialize() {
	if !e.accept("initialize", e.state.Phase == core.PhaseSplash ||
		e.state.Phase == core.PhaseSetup ||
		e.state.Phase == core.PhaseSharedResult) {
		return
	}
	e.rng = random.New(e.seed)
	e.doom = doomSources{}
	e.commit(e.setupSnapshot())
}

// SelectDevice picks one of the available devices.
func (e *Engine) SelectDevice(id string) {
	if !e.accept("select_device", e.state.Phase == core.PhaseSetup) {
		return
	}
	idx := slices.IndexFunc(e.state.AvailableDevices, func(d core.Device) bool { return d.ID == id })
	if !e.accept("select_device", idx >= 0) {
		return
	}

	next := e.state.Clone()
	dev := next.AvailableDevices[idx].Clone()
	next.SelectedDevice = &dev
	next.Budget = dev.InitialBudget
	next.ActiveTags = core.NormalizeTags(dev.DefaultTags)
	next.ComplianceLevel = e.cfg.Compliance.Start
	e.commit(next)
}

// StartSimulation begins month zero with the selected device.
func (e *Engine) StartSimulation() {
	if !e.accept("start_simulation", e.state.Phase == core.PhaseSetup && e.state.SelectedDevice != nil) {
		return
	}
	next := e.state.Clone()
	next.Phase = core.PhaseSimulation
	next.TimelineMonth = 0
	next.IsPaused = false
	next.LastEventMonth = core.NoLastEvent
	e.commit(next)
}

// AdvanceTime simulates up to months months. It stops early when a crisis
// opens or the run ends; the remaining months are dropped.
func (e *Engine) AdvanceTime(months int) {
	if !e.accept("advance_time", months > 0 && e.running()) {
		return
	}
	next := e.state.Clone()
	e.advance(&next, months)
	e.commit(next)
}

// TriggerCrisis opens a specific catalog event.
func (e *Engine) TriggerCrisis(eventID string) {
	if !e.accept("trigger_crisis", e.running()) {
		return
	}
	ev, ok := e.provider.EventByID(eventID)
	if !e.accept("trigger_crisis", ok && len(ev.Choices) > 0) {
		return
	}
	next := e.state.Clone()
	openCrisis(&next, ev)
	e.commit(next)
}

// ResolveCrisis applies a choice of the open crisis and resumes time.
func (e *Engine) ResolveCrisis(choiceID string) {
	if !e.accept("resolve_crisis", e.state.Phase == core.PhaseCrisis && e.state.CurrentCrisis != nil) {
		return
	}
	choice, ok := e.state.CurrentCrisis.Choice(choiceID)
	if !e.accept("resolve_crisis", ok) {
		return
	}

	next := e.state.Clone()
	next.Budget -= choice.Cost
	before := next.DoomLevel
	next.DoomLevel = core.ClampScore(before + choice.DoomImpact)
	next.ComplianceLevel = core.ClampScore(next.ComplianceLevel + choice.ComplianceImpact)
	next.ActiveTags = core.MergeTags(next.ActiveTags, choice.AddTags, choice.RemoveTags)
	next.History = append(next.History, core.HistoryEntry{
		Month:        next.TimelineMonth,
		EventID:      next.CurrentCrisis.ID,
		ChoiceID:     choice.ID,
		DoomIncrease: next.DoomLevel - before,
		Cost:         choice.Cost,
	})
	next.CurrentCrisis = nil
	next.Phase = core.PhaseSimulation
	next.IsPaused = false
	e.checkTerminal(&next)
	e.commit(next)
}

// SetFundingLevel changes the compliance investment tier. It applies from
// the next simulated month.
func (e *Engine) SetFundingLevel(level core.FundingLevel) {
	phase := e.state.Phase
	if !e.accept("set_funding", level.Valid() && level != e.state.FundingLevel &&
		(phase == core.PhaseSetup || phase.InRun())) {
		return
	}
	next := e.state.Clone()
	next.FundingLevel = level
	e.commit(next)
}

// CanShip reports whether ShipProduct would be accepted.
func (e *Engine) CanShip() bool {
	return e.running() && e.state.DoomLevel < e.cfg.Shipping.MaxDoomFraction*e.cfg.Doom.Max
}

// ShipProduct books a release: reward in, doom up, time forward.
func (e *Engine) ShipProduct() {
	if !e.accept("ship_product", e.CanShip()) {
		return
	}
	next := e.state.Clone()
	next.Budget += e.cfg.Shipping.Reward
	before := next.DoomLevel
	next.DoomLevel = core.ClampScore(before + e.cfg.Shipping.DoomPenalty)
	e.doom.shipping += next.DoomLevel - before
	if !e.checkTerminal(&next) {
		e.advance(&next, e.cfg.Shipping.Months)
	}
	e.commit(next)
}

// RestoreState replaces the live snapshot with a repaired copy of snap and
// reseeds from its seed, month and history length.
func (e *Engine) RestoreState(snap core.Snapshot) {
	if !e.accept("restore_state", true) {
		return
	}
	e.seed = snap.Seed
	e.rng = random.New(random.Derive(snap.Seed, fmt.Sprintf("restore:%d:%d", snap.TimelineMonth, len(snap.History))))
	e.doom = doomSources{}
	e.commit(e.repair(snap))
}

// Reset returns to splash with the next derived seed.
func (e *Engine) Reset() {
	if !e.accept("reset", true) {
		return
	}
	e.seed = random.Derive(e.seed, "reset")
	e.rng = random.New(e.seed)
	e.doom = doomSources{}
	next := core.NewSnapshot(e.seed)
	next.FundingLevel = e.cfg.Funding.Default
	e.commit(next)
}

func (e *Engine) running() bool {
	return e.state.Phase == core.PhaseSimulation && !e.state.IsPaused
}

// accept logs and rejects commands issued from inside a listener or whose
// precondition ok is false.
func (e *Engine) accept(cmd string, ok bool) bool {
	if e.publishing {
		e.logger.Warn("command rejected during notification", "cmd", cmd)
		return false
	}
	if !ok {
		e.logger.Debug("command ignored", "cmd", cmd, "phase", e.state.Phase)
	}
	return ok
}

func (e *Engine) commit(next core.Snapshot) {
	if next.Phase != e.state.Phase {
		e.logger.Debug("phase change", "from", e.state.Phase, "to", next.Phase, "month", next.TimelineMonth)
	}
	e.state = next

	e.publishing = true
	defer func() { e.publishing = false }()
	for _, s := range slices.Clone(e.subs) {
		s.fn(e.state.Clone())
	}
}

// setupSnapshot builds a fresh setup state with a new device draw.
func (e *Engine) setupSnapshot() core.Snapshot {
	next := core.NewSnapshot(e.seed)
	next.Phase = core.PhaseSetup
	next.FundingLevel = e.cfg.Funding.Default
	next.ComplianceLevel = e.cfg.Compliance.Start
	next.AvailableDevices = e.drawDevices()
	return next
}

// drawDevices returns the preferred device followed by distinct random
// others in draw order.
func (e *Engine) drawDevices() []core.Device {
	all := e.provider.Devices()
	out := make([]core.Device, 0, e.cfg.Setup.RandomDeviceCount+1)

	rest := all[:0:0]
	for _, d := range all {
		if d.ID == e.cfg.Setup.PreferredDeviceID {
			out = append(out, d.Clone())
			continue
		}
		rest = append(rest, d)
	}
	for _, i := range e.rng.Sample(len(rest), e.cfg.Setup.RandomDeviceCount) {
		out = append(out, rest[i].Clone())
	}
	return out
}

// advance runs the monthly loop on s.
func (e *Engine) advance(s *core.Snapshot, months int) {
	for range months {
		e.advanceMonth(s)
		if s.Phase != core.PhaseSimulation {
			return
		}
	}
}

func (e *Engine) advanceMonth(s *core.Snapshot) {
	s.TimelineMonth++
	month := s.TimelineMonth
	dev := *s.SelectedDevice

	s.ComplianceLevel = e.econ.DriftCompliance(s.ComplianceLevel, s.FundingLevel, 1)
	s.Budget -= e.econ.MonthlyMaintenanceCost(dev, month, s.FundingLevel)
	if stress := e.econ.BudgetStressDoom(s.Budget); stress > 0 {
		before := s.DoomLevel
		s.DoomLevel = core.ClampScore(before + stress)
		e.doom.budget += s.DoomLevel - before
	}
	s.ActiveTags = e.econ.SyncTags(s.ActiveTags, s.ComplianceLevel, month, dev.EndOfLifeMonth)

	if e.checkTerminal(s) {
		return
	}

	p := events.Probability(e.cfg.Events, month, s.LastEventMonth, s.DoomLevel, s.ActiveTags)
	fired, _ := events.Roll(e.rng, p)
	if !fired {
		if events.ShouldDeflect(e.cfg.Events, p, false) {
			s.ShieldDeflections = append(s.ShieldDeflections, core.Deflection{Month: month, Probability: p})
		}
		return
	}
	if ev, ok := events.Select(e.provider, e.rng, *s); ok {
		openCrisis(s, ev)
	}
}

// checkTerminal moves s to autopsy or victory and reports whether it did.
func (e *Engine) checkTerminal(s *core.Snapshot) bool {
	switch {
	case s.DoomLevel >= e.cfg.Doom.Max:
		s.Phase = core.PhaseAutopsy
		s.CurrentCrisis = nil
		s.IsPaused = false
		analysis := e.analyse(*s)
		s.DeathAnalysis = &analysis
		return true
	case s.TimelineMonth >= e.cfg.Timeline.TotalMonths:
		s.Phase = core.PhaseVictory
		s.CurrentCrisis = nil
		s.IsPaused = false
		return true
	}
	return false
}

func openCrisis(s *core.Snapshot, ev core.Event) {
	c := ev.Crisis()
	s.CurrentCrisis = &c
	s.Phase = core.PhaseCrisis
	s.IsPaused = true
	s.LastEventMonth = s.TimelineMonth
}
