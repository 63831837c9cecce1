package core

// Device is a product the player can steer through its lifecycle.
type Device struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Category        string   `json:"category" yaml:"category"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	InitialBudget   int64    `json:"initialBudget" yaml:"initial_budget"`
	MaintenanceCost int64    `json:"maintenanceCost" yaml:"maintenance_cost"`
	EndOfLifeMonth  int      `json:"endOfLifeMonth" yaml:"end_of_life_month"`
	DefaultTags     []string `json:"defaultTags" yaml:"default_tags"`
}

// Clone returns a deep copy of the device.
func (d Device) Clone() Device {
	d.DefaultTags = cloneStrings(d.DefaultTags)
	return d
}

// Choice is one way to resolve a crisis.
type Choice struct {
	ID               string   `json:"id" yaml:"id"`
	Label            string   `json:"label" yaml:"label"`
	Cost             int64    `json:"cost" yaml:"cost"`
	DoomImpact       float64  `json:"doomImpact" yaml:"doom_impact"`
	ComplianceImpact float64  `json:"complianceImpact,omitempty" yaml:"compliance_impact"`
	AddTags          []string `json:"addTags,omitempty" yaml:"add_tags"`
	RemoveTags       []string `json:"removeTags,omitempty" yaml:"remove_tags"`
}

// Clone returns a deep copy of the choice.
func (c Choice) Clone() Choice {
	if c.AddTags != nil {
		c.AddTags = cloneStrings(c.AddTags)
	}
	if c.RemoveTags != nil {
		c.RemoveTags = cloneStrings(c.RemoveTags)
	}
	return c
}

// Event is a catalog crisis definition with its eligibility rules.
//
// An event is eligible when the device category is listed in Categories
// (or Categories is empty), every RequiredTags entry is active, and no
// ExcludedTags entry is active. MinMonth delays the event, Once limits it
// to one occurrence per run, and Weight biases selection (0 means 1).
type Event struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Categories   []string `json:"categories,omitempty" yaml:"categories"`
	RequiredTags []string `json:"requiredTags,omitempty" yaml:"required_tags"`
	ExcludedTags []string `json:"excludedTags,omitempty" yaml:"excluded_tags"`
	MinMonth     int      `json:"minMonth,omitempty" yaml:"min_month"`
	Weight       float64  `json:"weight,omitempty" yaml:"weight"`
	Once         bool     `json:"once,omitempty" yaml:"once"`
	Choices      []Choice `json:"choices" yaml:"choices"`
}

// Crisis builds the in-flight crisis for this event.
func (e Event) Crisis() Crisis {
	choices := make([]Choice, len(e.Choices))
	for i, c := range e.Choices {
		choices[i] = c.Clone()
	}
	return Crisis{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Choices:     choices,
	}
}

// Crisis is an open event waiting for the player's choice.
type Crisis struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Choices     []Choice `json:"choices"`
}

// Clone returns a deep copy of the crisis.
func (c Crisis) Clone() Crisis {
	choices := make([]Choice, len(c.Choices))
	for i, ch := range c.Choices {
		choices[i] = ch.Clone()
	}
	c.Choices = choices
	return c
}

// Choice looks up a choice by id.
func (c Crisis) Choice(id string) (Choice, bool) {
	for _, ch := range c.Choices {
		if ch.ID == id {
			return ch, true
		}
	}
	return Choice{}, false
}
