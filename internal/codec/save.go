package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vovakirdan/doomcycle/internal/core"
)

// CurrentVersion is the save record version written by EncodeSave.
const CurrentVersion = 2

// ErrUnsupportedVersion is returned for records no migration can reach.
var ErrUnsupportedVersion = errors.New("codec: unsupported save version")

// SaveMeta is the envelope of a decoded save record.
type SaveMeta struct {
	Version int
	SavedAt time.Time
}

type saveRecord struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	State   json.RawMessage `json:"state"`
}

// transient fields are rebuilt on restore and never persisted.
var transientFields = []string{"availableDevices", "sharedResult"}

// migrations upgrade a state object from the keyed version to the next.
var migrations = map[int]func([]byte) ([]byte, error){
	1: migrateV1,
}

// EncodeSave writes a versioned save record for snap.
func EncodeSave(snap core.Snapshot, savedAt time.Time) ([]byte, error) {
	state, err := encodeState(snap)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(saveRecord{
		Version: CurrentVersion,
		SavedAt: savedAt.UTC(),
		State:   state,
	})
	if err != nil {
		return nil, fmt.Errorf("codec: encode save: %w", err)
	}
	return data, nil
}

// DecodeSave reads a save record, migrating older versions.
func DecodeSave(data []byte) (core.Snapshot, SaveMeta, error) {
	var rec saveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return core.Snapshot{}, SaveMeta{}, fmt.Errorf("codec: decode save: %w", err)
	}
	if len(rec.State) == 0 {
		return core.Snapshot{}, SaveMeta{}, &SchemaError{Field: "state", Reason: "missing"}
	}

	state, err := migrate(rec.State, rec.Version)
	if err != nil {
		return core.Snapshot{}, SaveMeta{}, err
	}
	snap, err := decodeState(state)
	if err != nil {
		return core.Snapshot{}, SaveMeta{}, err
	}
	return snap, SaveMeta{Version: rec.Version, SavedAt: rec.SavedAt}, nil
}

func migrate(state []byte, version int) ([]byte, error) {
	if version < 1 || version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	for v := version; v < CurrentVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return nil, fmt.Errorf("%w: no migration from %d", ErrUnsupportedVersion, v)
		}
		var err error
		if state, err = step(state); err != nil {
			return nil, fmt.Errorf("codec: migrate v%d: %w", v, err)
		}
	}
	return state, nil
}

// migrateV1 renames the short v1 keys and fills the event sentinel v1
// did not store.
func migrateV1(state []byte) ([]byte, error) {
	renames := []struct{ from, to string }{
		{"month", "timelineMonth"},
		{"funding", "fundingLevel"},
		{"tags", "activeTags"},
		{"doom", "doomLevel"},
		{"compliance", "complianceLevel"},
	}
	var err error
	for _, r := range renames {
		v := gjson.GetBytes(state, r.from)
		if !v.Exists() {
			continue
		}
		if state, err = sjson.SetRawBytes(state, r.to, []byte(v.Raw)); err != nil {
			return nil, err
		}
		if state, err = sjson.DeleteBytes(state, r.from); err != nil {
			return nil, err
		}
	}
	if !gjson.GetBytes(state, "lastEventMonth").Exists() {
		if state, err = sjson.SetBytes(state, "lastEventMonth", core.NoLastEvent); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// encodeState marshals the persisted subset of snap.
func encodeState(snap core.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("codec: encode state: %w", err)
	}
	for _, field := range transientFields {
		if data, err = sjson.DeleteBytes(data, field); err != nil {
			return nil, fmt.Errorf("codec: encode state: %w", err)
		}
	}
	return data, nil
}

// decodeState validates and unmarshals a state object. Missing fields keep
// their NewSnapshot defaults and nil collections are emptied.
func decodeState(state []byte) (core.Snapshot, error) {
	if err := Validate(state); err != nil {
		return core.Snapshot{}, err
	}
	snap := core.NewSnapshot(0)
	if err := json.Unmarshal(state, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("codec: decode state: %w", err)
	}
	snap.AvailableDevices = nil
	snap.SharedResult = nil
	return snap.Clone(), nil
}
