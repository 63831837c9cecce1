package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/doomcycle/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "profile.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	// Reopening runs the migrations again
	again, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	again.Close()
}

func TestSaveLoadDeleteGame(t *testing.T) {
	store := openTestStore(t)
	savedAt := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	if _, err := store.LoadGame("alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.SaveGame("alice", 2, []byte(`{"v":1}`), savedAt); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}
	if err := store.SaveGame("alice", 2, []byte(`{"v":2}`), savedAt.Add(time.Minute)); err != nil {
		t.Fatalf("SaveGame() overwrite failed: %v", err)
	}

	entry, err := store.LoadGame("alice")
	if err != nil {
		t.Fatalf("LoadGame() failed: %v", err)
	}
	if string(entry.Record) != `{"v":2}` || entry.Version != 2 {
		t.Errorf("entry = %+v, expected the latest record", entry)
	}
	if !entry.SavedAt.Equal(savedAt.Add(time.Minute)) {
		t.Errorf("SavedAt = %v", entry.SavedAt)
	}

	if _, err := store.LoadGame("bob"); !errors.Is(err, ErrNotFound) {
		t.Error("profiles should not share a save slot")
	}

	if err := store.DeleteGame("alice"); err != nil {
		t.Fatalf("DeleteGame() failed: %v", err)
	}
	if _, err := store.LoadGame("alice"); !errors.Is(err, ErrNotFound) {
		t.Error("save still present after delete")
	}
}

func TestSaveLoadStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.LoadStats("alice")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if stats.Achievements == nil || stats.RunHistory == nil {
		t.Error("missing stats should still have non-nil collections")
	}

	stats.GamesPlayed = 4
	stats.GamesWon = 1
	stats.Achievements = []string{"first_run", "first_victory"}
	stats.RunHistory = []core.RunRecord{{ID: "r1", DeviceID: "smart-lock", Outcome: core.PhaseVictory, Months: 60}}
	if err := store.SaveStats("alice", stats); err != nil {
		t.Fatalf("SaveStats() failed: %v", err)
	}

	got, err := store.LoadStats("alice")
	if err != nil {
		t.Fatalf("LoadStats() failed: %v", err)
	}
	if got.GamesPlayed != 4 || got.GamesWon != 1 || len(got.Achievements) != 2 || got.RunHistory[0].ID != "r1" {
		t.Errorf("stats = %+v", got)
	}
}

func TestLoadStatsDropsDuplicates(t *testing.T) {
	store := openTestStore(t)

	stats := core.NewGameStats()
	stats.Achievements = []string{"first_run", "collector", "first_run"}
	stats.RecordedRuns = []string{"r1", "r1"}
	if err := store.SaveStats("bob", stats); err != nil {
		t.Fatalf("SaveStats() failed: %v", err)
	}

	got, err := store.LoadStats("bob")
	if err != nil {
		t.Fatalf("LoadStats() failed: %v", err)
	}
	if len(got.Achievements) != 2 || got.Achievements[0] != "first_run" || got.Achievements[1] != "collector" {
		t.Errorf("achievements = %v", got.Achievements)
	}
	if len(got.RecordedRuns) != 1 {
		t.Errorf("recorded runs = %v", got.RecordedRuns)
	}
}

func TestRecordRunIdempotent(t *testing.T) {
	store := openTestStore(t)
	run := core.RunRecord{ID: "run-1", DeviceID: "baby-monitor", Outcome: core.PhaseAutopsy, Months: 20, DoomLevel: 100}

	inserted, err := store.RecordRun("alice", run)
	if err != nil || !inserted {
		t.Fatalf("RecordRun() = %v, %v", inserted, err)
	}
	inserted, err = store.RecordRun("alice", run)
	if err != nil {
		t.Fatalf("RecordRun() duplicate failed: %v", err)
	}
	if inserted {
		t.Error("duplicate run inserted")
	}

	runs, err := store.TopRuns("", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestTopRunsOrder(t *testing.T) {
	store := openTestStore(t)
	finished := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	runs := []struct {
		profile string
		run     core.RunRecord
	}{
		{"alice", core.RunRecord{ID: "a", DeviceID: "d1", Outcome: core.PhaseAutopsy, Months: 30, DoomLevel: 100, FinishedAt: finished}},
		{"alice", core.RunRecord{ID: "b", DeviceID: "d2", Outcome: core.PhaseVictory, Months: 60, DoomLevel: 40, FinishedAt: finished}},
		{"bob", core.RunRecord{ID: "c", DeviceID: "d1", Outcome: core.PhaseVictory, Months: 60, DoomLevel: 12, FinishedAt: finished}},
		{"alice", core.RunRecord{ID: "d", DeviceID: "d1", Outcome: core.PhaseAutopsy, Months: 5, DoomLevel: 100, FinishedAt: finished}},
	}
	for _, r := range runs {
		if _, err := store.RecordRun(r.profile, r.run); err != nil {
			t.Fatalf("RecordRun() failed: %v", err)
		}
	}

	all, err := store.TopRuns("", 3)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	want := []string{"c", "b", "a"}
	if len(all) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].RunID != id {
			t.Errorf("runs[%d] = %s, expected %s", i, all[i].RunID, id)
		}
	}
	if !all[0].CreatedAt.Equal(finished) {
		t.Errorf("CreatedAt = %v, expected %v", all[0].CreatedAt, finished)
	}

	alice, err := store.TopRuns("alice", 10)
	if err != nil {
		t.Fatalf("TopRuns(alice) failed: %v", err)
	}
	if len(alice) != 3 || alice[0].RunID != "b" {
		t.Errorf("alice runs = %+v", alice)
	}
}

func TestDeviceSummaries(t *testing.T) {
	store := openTestStore(t)
	for i, r := range []core.RunRecord{
		{DeviceID: "d1", Outcome: core.PhaseVictory, Months: 60, DoomLevel: 20},
		{DeviceID: "d1", Outcome: core.PhaseAutopsy, Months: 25, DoomLevel: 100},
		{DeviceID: "d2", Outcome: core.PhaseAutopsy, Months: 12, DoomLevel: 100},
	} {
		r.ID = string(rune('a' + i))
		if _, err := store.RecordRun("alice", r); err != nil {
			t.Fatalf("RecordRun() failed: %v", err)
		}
	}

	sums, err := store.DeviceSummaries("alice")
	if err != nil {
		t.Fatalf("DeviceSummaries() failed: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(sums))
	}
	d1 := sums[0]
	if d1.DeviceID != "d1" || d1.Runs != 2 || d1.Wins != 1 || d1.BestMonths != 60 || d1.AvgDoom != 60 {
		t.Errorf("d1 summary = %+v", d1)
	}
	if d1.LastPlayed.IsZero() {
		t.Error("LastPlayed not parsed")
	}

	none, err := store.DeviceSummaries("nobody")
	if err != nil || len(none) != 0 {
		t.Errorf("expected no summaries, got %v, %v", none, err)
	}
}
