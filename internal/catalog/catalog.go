// Package catalog loads the device and crisis definitions from YAML and
// serves them to the engine.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sort"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/doomcycle/internal/core"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	devicesFile = "devices.yaml"
	eventsFile  = "events.yaml"
)

type devicesDoc struct {
	Devices []core.Device `yaml:"devices"`
}

type eventsDoc struct {
	Events []core.Event `yaml:"events"`
}

// Catalog is a validated, read-only set of devices and events.
// Accessors return copies so callers cannot mutate the catalog.
type Catalog struct {
	devices []core.Device
	events  []core.Event
	byID    map[string]int
	eventIx map[string]int
}

// LoadEmbedded loads the catalog shipped with the binary.
func LoadEmbedded() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("catalog: embedded data: %w", err)
	}
	return LoadFS(sub)
}

// LoadDir loads devices.yaml and events.yaml from a directory.
func LoadDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads devices.yaml and events.yaml from fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	devData, err := fs.ReadFile(fsys, devicesFile)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", devicesFile, err)
	}
	evData, err := fs.ReadFile(fsys, eventsFile)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", eventsFile, err)
	}
	return Parse(devData, evData)
}

// Parse decodes and validates the two catalog documents.
func Parse(devicesYAML, eventsYAML []byte) (*Catalog, error) {
	var dd devicesDoc
	if err := yaml.Unmarshal(devicesYAML, &dd); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", devicesFile, err)
	}
	var ed eventsDoc
	if err := yaml.Unmarshal(eventsYAML, &ed); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", eventsFile, err)
	}
	return New(dd.Devices, ed.Events)
}

// New validates devices and events and builds a Catalog from copies of them.
func New(devices []core.Device, events []core.Event) (*Catalog, error) {
	if err := Validate(devices, events); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	c := &Catalog{
		devices: make([]core.Device, len(devices)),
		events:  make([]core.Event, len(events)),
		byID:    make(map[string]int, len(devices)),
		eventIx: make(map[string]int, len(events)),
	}
	for i, d := range devices {
		d = d.Clone()
		d.DefaultTags = core.NormalizeTags(d.DefaultTags)
		c.devices[i] = d
		c.byID[d.ID] = i
	}
	for i, e := range events {
		c.events[i] = cloneEvent(e)
		c.eventIx[e.ID] = i
	}
	return c, nil
}

// Devices returns every device in catalog order.
func (c *Catalog) Devices() []core.Device {
	if c == nil {
		return nil
	}
	out := make([]core.Device, len(c.devices))
	for i, d := range c.devices {
		out[i] = d.Clone()
	}
	return out
}

// DeviceByID looks up a device.
func (c *Catalog) DeviceByID(id string) (core.Device, bool) {
	if c == nil {
		return core.Device{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return core.Device{}, false
	}
	return c.devices[i].Clone(), true
}

// Events returns every event in catalog order.
func (c *Catalog) Events() []core.Event {
	if c == nil {
		return nil
	}
	out := make([]core.Event, len(c.events))
	for i, e := range c.events {
		out[i] = cloneEvent(e)
	}
	return out
}

// EventByID looks up an event.
func (c *Catalog) EventByID(id string) (core.Event, bool) {
	if c == nil {
		return core.Event{}, false
	}
	i, ok := c.eventIx[id]
	if !ok {
		return core.Event{}, false
	}
	return cloneEvent(c.events[i]), true
}

// EligibleEvents returns the events whose category and tag rules match.
// MinMonth and Once are left to the caller, which knows the run history.
func (c *Catalog) EligibleEvents(tags []string, category string) []core.Event {
	if c == nil {
		return nil
	}
	var out []core.Event
	for _, e := range c.events {
		if len(e.Categories) > 0 && !slices.Contains(e.Categories, category) {
			continue
		}
		if !containsAll(tags, e.RequiredTags) || containsAny(tags, e.ExcludedTags) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	return out
}

// Suggest returns device ids close to an unknown id, nearest first.
func (c *Catalog) Suggest(id string) []string {
	if c == nil || id == "" {
		return nil
	}
	type candidate struct {
		id   string
		dist int
	}
	var cands []candidate
	for _, d := range c.devices {
		dist := levenshtein.ComputeDistance(id, d.ID)
		if dist > suggestLimit(len(d.ID)) {
			continue
		}
		cands = append(cands, candidate{id: d.ID, dist: dist})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist == cands[j].dist {
			return cands[i].id < cands[j].id
		}
		return cands[i].dist < cands[j].dist
	})
	out := make([]string, len(cands))
	for i, cand := range cands {
		out[i] = cand.id
	}
	return out
}

func suggestLimit(length int) int {
	switch {
	case length <= 6:
		return 2
	case length <= 12:
		return 3
	default:
		return 4
	}
}

func containsAll(set, want []string) bool {
	for _, w := range want {
		if !slices.Contains(set, w) {
			return false
		}
	}
	return true
}

func containsAny(set, want []string) bool {
	for _, w := range want {
		if slices.Contains(set, w) {
			return true
		}
	}
	return false
}

func cloneEvent(e core.Event) core.Event {
	e.Categories = slices.Clone(e.Categories)
	e.RequiredTags = slices.Clone(e.RequiredTags)
	e.ExcludedTags = slices.Clone(e.ExcludedTags)
	choices := make([]core.Choice, len(e.Choices))
	for i, ch := range e.Choices {
		choices[i] = ch.Clone()
	}
	e.Choices = choices
	return e
}
