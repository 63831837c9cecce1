// Package session binds one engine to a profile store: it autosaves the run
// in progress, records finished runs once, and restores from a save or a
// share link on start.
package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/doomcycle/internal/achievements"
	"github.com/vovakirdan/doomcycle/internal/codec"
	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/engine"
	"github.com/vovakirdan/doomcycle/internal/storage"
)

// Store is the profile persistence the host needs.
type Store interface {
	SaveGame(profile string, version int, record []byte, savedAt time.Time) error
	LoadGame(profile string) (storage.SaveEntry, error)
	DeleteGame(profile string) error
	SaveStats(profile string, stats core.GameStats) error
	LoadStats(profile string) (core.GameStats, error)
	RecordRun(profile string, run core.RunRecord) (bool, error)
}

// Source tells where Start found the initial state.
type Source string

const (
	SourceFresh        Source = "fresh"
	SourceSave         Source = "save"
	SourceShareLink    Source = "share_link"
	SourceSharedResult Source = "shared_result"
)

// DefaultBaseURL prefixes share links when Options.BaseURL is empty.
const DefaultBaseURL = "https://doomcycle.dev/play"

// Options configures a Host.
type Options struct {
	Profile  string
	Language string
	BaseURL  string
	Logger   *log.Logger
	Now      func() time.Time
}

// Host drives persistence for one engine and one profile.
type Host struct {
	engine *engine.Engine
	store  Store
	opts   Options
	logger *log.Logger

	stats       core.GameStats
	recordedRun string
	lastEarned  []string
	unsubscribe func()
}

// New loads the profile stats and subscribes to e. store may be nil, in
// which case nothing is persisted.
func New(e *engine.Engine, store Store, opts Options) (*Host, error) {
	if opts.Profile == "" {
		opts.Profile = core.DefaultConfig().Profile
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Language = codec.CanonicalLanguage(opts.Language)

	h := &Host{
		engine: e,
		store:  store,
		opts:   opts,
		logger: opts.Logger,
		stats:  core.NewGameStats(),
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}

	if store != nil {
		stats, err := store.LoadStats(opts.Profile)
		switch {
		case err == nil:
			h.stats = stats
		case !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("session: load stats: %w", err)
		}
	}

	h.unsubscribe = e.Subscribe(h.onChange)
	return h, nil
}

// Start restores the initial state. A share URL wins over the local save;
// any decode failure falls back to a fresh setup.
func (h *Host) Start(shareURL string) Source {
	if shareURL != "" {
		if src, ok := h.restoreFromURL(shareURL); ok {
			return src
		}
		h.logger.Warn("ignoring unusable share link")
	}
	if h.restoreFromSave() {
		return SourceSave
	}
	h.engine.Initialize()
	return SourceFresh
}

func (h *Host) restoreFromURL(raw string) (Source, bool) {
	link, err := codec.ParseShareURL(raw)
	if err != nil || link.Empty() {
		return "", false
	}
	if link.ResultToken != "" {
		if r, ok := codec.DecodeResultToken(link.ResultToken); ok {
			h.engine.RestoreState(codec.SharedResultSnapshot(r))
			return SourceSharedResult, true
		}
	}
	if link.SaveToken != "" {
		if snap, ok := codec.DecodeSaveToken(link.SaveToken); ok {
			h.engine.RestoreState(snap)
			return SourceShareLink, true
		}
	}
	return "", false
}

func (h *Host) restoreFromSave() bool {
	if h.store == nil {
		return false
	}
	entry, err := h.store.LoadGame(h.opts.Profile)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Warn("cannot load save", "profile", h.opts.Profile, "err", err)
		}
		return false
	}
	snap, _, err := codec.DecodeSave(entry.Record)
	if err != nil {
		h.logger.Warn("discarding unreadable save", "profile", h.opts.Profile, "err", err)
		if err := h.store.DeleteGame(h.opts.Profile); err != nil {
			h.logger.Warn("cannot delete save", "err", err)
		}
		return false
	}
	h.engine.RestoreState(snap)
	return true
}

// Engine returns the hosted engine.
func (h *Host) Engine() *engine.Engine {
	return h.engine
}

// Stats returns a copy of the profile stats.
func (h *Host) Stats() core.GameStats {
	return h.stats.Clone()
}

// LastEarned returns the achievements unlocked by the most recent run.
func (h *Host) LastEarned() []string {
	return append([]string(nil), h.lastEarned...)
}

// Profile returns the profile name.
func (h *Host) Profile() string {
	return h.opts.Profile
}

// ShareURL returns a debug link that restores the current state.
func (h *Host) ShareURL() (string, error) {
	token, err := codec.EncodeSaveToken(h.engine.State())
	if err != nil {
		return "", err
	}
	return codec.ShareURL(h.opts.BaseURL, codec.ParamSave, token)
}

// ResultURL returns a link showing the result of the finished run.
func (h *Host) ResultURL() (string, error) {
	snap := h.engine.State()
	if !snap.Phase.Terminal() {
		return "", fmt.Errorf("session: run has not finished (phase %s)", snap.Phase)
	}
	token, err := codec.EncodeResultToken(codec.ResultFromSnapshot(snap, h.opts.Language))
	if err != nil {
		return "", err
	}
	return codec.ShareURL(h.opts.BaseURL, codec.ParamResult, token)
}

// Close stops listening to the engine.
func (h *Host) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

func (h *Host) onChange(snap core.Snapshot) {
	switch {
	case snap.Phase == core.PhaseSetup || snap.Phase.InRun():
		h.autosave(snap)
	case snap.Phase.Terminal():
		h.recordRun(snap)
	case snap.Phase == core.PhaseSplash:
		h.clearSave()
	}
}

func (h *Host) autosave(snap core.Snapshot) {
	if h.store == nil {
		return
	}
	now := h.opts.Now()
	data, err := codec.EncodeSave(snap, now)
	if err != nil {
		h.logger.Warn("cannot encode save", "err", err)
		return
	}
	if err := h.store.SaveGame(h.opts.Profile, codec.CurrentVersion, data, now); err != nil {
		h.logger.Warn("autosave failed", "profile", h.opts.Profile, "err", err)
	}
}

func (h *Host) recordRun(snap core.Snapshot) {
	id := achievements.RunID(snap)
	if id == h.recordedRun {
		return
	}
	h.recordedRun = id

	limit := h.engine.Config().Stats.RunHistoryLimit
	before := h.stats.GamesPlayed
	stats, earned := achievements.RecordGame(h.stats, snap, h.opts.Now(), limit)
	h.stats = stats
	h.lastEarned = earned
	h.clearSave()

	if stats.GamesPlayed == before || h.store == nil {
		return
	}
	h.logger.Info("run finished", "outcome", snap.Phase, "month", snap.TimelineMonth, "achievements", len(earned))
	if err := h.store.SaveStats(h.opts.Profile, stats); err != nil {
		h.logger.Warn("cannot save stats", "err", err)
	}
	if _, err := h.store.RecordRun(h.opts.Profile, stats.RunHistory[0]); err != nil {
		h.logger.Warn("cannot record run", "err", err)
	}
}

func (h *Host) clearSave() {
	if h.store == nil {
		return
	}
	if err := h.store.DeleteGame(h.opts.Profile); err != nil {
		h.logger.Warn("cannot clear save", "profile", h.opts.Profile, "err", err)
	}
}
