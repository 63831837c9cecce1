// Package codec encodes snapshots as versioned local save records and as
// compact URL-safe share tokens.
package codec

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/vovakirdan/doomcycle/internal/core"
)

// SchemaError reports a persisted state that cannot describe a game.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("codec: invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the fields every persisted state must carry and the
// ranges of the scores and months when present. Everything else is
// repaired when the snapshot is restored.
func Validate(state []byte) error {
	if !gjson.ValidBytes(state) {
		return &SchemaError{Field: "state", Reason: "not valid JSON"}
	}
	root := gjson.ParseBytes(state)
	if !root.IsObject() {
		return &SchemaError{Field: "state", Reason: "not an object"}
	}

	phase := root.Get("phase")
	switch {
	case !phase.Exists():
		return &SchemaError{Field: "phase", Reason: "missing"}
	case phase.Type != gjson.String:
		return &SchemaError{Field: "phase", Reason: "not a string"}
	case !core.Phase(phase.Str).Valid():
		return &SchemaError{Field: "phase", Reason: fmt.Sprintf("unknown phase %q", phase.Str)}
	}

	budget := root.Get("budget")
	switch {
	case !budget.Exists():
		return &SchemaError{Field: "budget", Reason: "missing"}
	case budget.Type != gjson.Number:
		return &SchemaError{Field: "budget", Reason: "not a number"}
	}

	ranges := []struct {
		field  string
		lo, hi float64
	}{
		{"doomLevel", core.MinScore, core.MaxScore},
		{"complianceLevel", core.MinScore, core.MaxScore},
		{"timelineMonth", 0, math.Inf(1)},
		{"lastEventMonth", core.NoLastEvent, math.Inf(1)},
	}
	for _, r := range ranges {
		if err := checkRange(root, r.field, r.lo, r.hi); err != nil {
			return err
		}
	}
	return nil
}

// checkRange accepts a missing field; a present one must be a number in
// [lo, hi].
func checkRange(root gjson.Result, field string, lo, hi float64) error {
	v := root.Get(field)
	if !v.Exists() {
		return nil
	}
	if v.Type != gjson.Number {
		return &SchemaError{Field: field, Reason: "not a number"}
	}
	if f := v.Float(); f < lo || f > hi {
		return &SchemaError{Field: field, Reason: fmt.Sprintf("%g out of range", f)}
	}
	return nil
}
