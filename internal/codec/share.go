package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/language"

	"github.com/vovakirdan/doomcycle/internal/core"
)

// Token format bytes. They lead the compressed payload.
const (
	formatSave   byte = 's'
	formatResult byte = 'r'
)

// MaxTokenLength bounds the tokens accepted from URLs.
const MaxTokenLength = 16 << 10

// maxPayload bounds the decompressed size of a token.
const maxPayload = 1 << 20

// ErrInvalidToken is returned for tokens that cannot be decoded.
var ErrInvalidToken = errors.New("codec: invalid share token")

// EncodeSaveToken packs the persisted subset of snap into a debug link token.
func EncodeSaveToken(snap core.Snapshot) (string, error) {
	state, err := encodeState(snap)
	if err != nil {
		return "", err
	}
	return encodeToken(formatSave, state)
}

// DecodeSaveToken unpacks a debug link token. ok is false on any failure.
func DecodeSaveToken(token string) (snap core.Snapshot, ok bool) {
	payload, err := decodeToken(formatSave, token)
	if err != nil {
		return core.Snapshot{}, false
	}
	snap, err = decodeState(payload)
	if err != nil {
		return core.Snapshot{}, false
	}
	return snap, true
}

// EncodeResultToken packs a run result for sharing.
func EncodeResultToken(r core.ResultSummary) (string, error) {
	r.Language = CanonicalLanguage(r.Language)
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("codec: encode result: %w", err)
	}
	return encodeToken(formatResult, data)
}

// DecodeResultToken unpacks a result token. ok is false on any failure or
// when the result could not come from a finished run.
func DecodeResultToken(token string) (r core.ResultSummary, ok bool) {
	payload, err := decodeToken(formatResult, token)
	if err != nil {
		return core.ResultSummary{}, false
	}
	if err := json.Unmarshal(payload, &r); err != nil {
		return core.ResultSummary{}, false
	}
	if !validResult(r) {
		return core.ResultSummary{}, false
	}
	r.Language = CanonicalLanguage(r.Language)
	return r, true
}

func validResult(r core.ResultSummary) bool {
	inRange := func(v float64) bool {
		return !math.IsNaN(v) && v >= core.MinScore && v <= core.MaxScore
	}
	return r.Outcome.Terminal() && r.Month >= 0 && inRange(r.DoomLevel) && inRange(r.ComplianceLevel)
}

// CanonicalLanguage normalises a BCP 47 tag, defaulting to English.
func CanonicalLanguage(tag string) string {
	if tag == "" {
		return language.English.String()
	}
	t, err := language.Parse(tag)
	if err != nil {
		return language.English.String()
	}
	return t.String()
}

// ResultFromSnapshot builds the shareable summary of a finished run.
func ResultFromSnapshot(snap core.Snapshot, lang string) core.ResultSummary {
	return core.ResultSummary{
		Outcome:         snap.Phase,
		Budget:          snap.Budget,
		DoomLevel:       snap.DoomLevel,
		ComplianceLevel: snap.ComplianceLevel,
		Month:           snap.TimelineMonth,
		DeviceID:        snap.DeviceID(),
		Language:        CanonicalLanguage(lang),
	}
}

// SharedResultSnapshot builds the shared_result snapshot that displays r.
func SharedResultSnapshot(r core.ResultSummary) core.Snapshot {
	snap := core.NewSnapshot(0)
	snap.Phase = core.PhaseSharedResult
	snap.Budget = r.Budget
	snap.DoomLevel = r.DoomLevel
	snap.ComplianceLevel = r.ComplianceLevel
	snap.TimelineMonth = r.Month
	snap.SharedResult = &r
	return snap
}

func encodeToken(format byte, payload []byte) (string, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return "", fmt.Errorf("codec: zstd writer: %w", err)
	}
	defer enc.Close()

	raw := make([]byte, 0, len(payload)+1)
	raw = append(raw, format)
	raw = append(raw, payload...)
	return base64.RawURLEncoding.EncodeToString(enc.EncodeAll(raw, nil)), nil
}

func decodeToken(format byte, token string) ([]byte, error) {
	if token == "" || len(token) > MaxTokenLength {
		return nil, ErrInvalidToken
	}
	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayload))
	if err != nil {
		return nil, fmt.Errorf("codec: zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(raw) < 2 || raw[0] != format {
		return nil, ErrInvalidToken
	}
	return raw[1:], nil
}
