package core

import (
	"reflect"
	"testing"
)

func TestPhaseValid(t *testing.T) {
	for _, p := range []Phase{PhaseSplash, PhaseSetup, PhaseSimulation, PhaseCrisis, PhaseAutopsy, PhaseVictory, PhaseSharedResult} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if Phase("paused").Valid() {
		t.Error("unknown phase should not be valid")
	}
	if !PhaseAutopsy.Terminal() || !PhaseVictory.Terminal() || PhaseCrisis.Terminal() {
		t.Error("Terminal() mismatch")
	}
}

func TestFundingNextCycles(t *testing.T) {
	f := FundingFull
	seen := map[FundingLevel]bool{}
	for range 3 {
		seen[f] = true
		f = f.Next()
	}
	if f != FundingFull || len(seen) != 3 {
		t.Errorf("Next() should cycle through all tiers, got %v", seen)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"b", "a", "", "b", "c", "a"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags() = %v, expected %v", got, want)
	}
	if got := NormalizeTags(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeTags(nil) = %#v, expected empty non-nil slice", got)
	}
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"cloud", "legacy"}, []string{"recall", "cloud"}, []string{"legacy"})
	want := []string{"cloud", "recall"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeTags() = %v, expected %v", got, want)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := NewSnapshot(7)
	s.SelectedDevice = &Device{ID: "hub", DefaultTags: []string{"cloud"}}
	s.ActiveTags = []string{"cloud"}
	s.CurrentCrisis = &Crisis{ID: "leak", Choices: []Choice{{ID: "patch", AddTags: []string{"patched"}}}}
	s.History = []HistoryEntry{{Month: 3, EventID: "leak"}}

	c := s.Clone()
	c.SelectedDevice.DefaultTags[0] = "changed"
	c.ActiveTags[0] = "changed"
	c.CurrentCrisis.Choices[0].AddTags[0] = "changed"
	c.History[0].Month = 99

	if s.SelectedDevice.DefaultTags[0] != "cloud" {
		t.Error("device tags shared between clones")
	}
	if s.ActiveTags[0] != "cloud" {
		t.Error("active tags shared between clones")
	}
	if s.CurrentCrisis.Choices[0].AddTags[0] != "patched" {
		t.Error("crisis choices shared between clones")
	}
	if s.History[0].Month != 3 {
		t.Error("history shared between clones")
	}
}

func TestCrisisChoiceLookup(t *testing.T) {
	c := Event{ID: "e", Choices: []Choice{{ID: "a"}, {ID: "b"}}}.Crisis()
	if _, ok := c.Choice("b"); !ok {
		t.Error("expected choice b")
	}
	if _, ok := c.Choice("zzz"); ok {
		t.Error("unexpected choice zzz")
	}
}
