package catalog

import (
	"fmt"

	"github.com/vovakirdan/doomcycle/internal/core"
)

// ValidationError contains details about a catalog validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validate checks a catalog before it is served.
// Checks:
//   - At least one device and one event
//   - Unique, non-empty device, event and choice ids
//   - Positive budgets, non-negative costs and end-of-life months
//   - Event categories name a known device category
//   - Every event has at least one choice and a non-negative weight
func Validate(devices []core.Device, events []core.Event) error {
	if len(devices) == 0 {
		return ValidationError{Code: "NO_DEVICES", Message: "catalog has no devices"}
	}
	if len(events) == 0 {
		return ValidationError{Code: "NO_EVENTS", Message: "catalog has no events"}
	}

	categories := make(map[string]bool)
	seen := make(map[string]bool)
	for i, d := range devices {
		if err := validateDevice(i, d); err != nil {
			return err
		}
		if seen[d.ID] {
			return ValidationError{Code: "DUPLICATE_ID", Message: fmt.Sprintf("device %q defined twice", d.ID)}
		}
		seen[d.ID] = true
		categories[d.Category] = true
	}

	seen = make(map[string]bool)
	for i, e := range events {
		if err := validateEvent(i, e, categories); err != nil {
			return err
		}
		if seen[e.ID] {
			return ValidationError{Code: "DUPLICATE_ID", Message: fmt.Sprintf("event %q defined twice", e.ID)}
		}
		seen[e.ID] = true
	}
	return nil
}

func validateDevice(i int, d core.Device) error {
	switch {
	case d.ID == "":
		return ValidationError{Code: "EMPTY_ID", Message: fmt.Sprintf("device #%d has no id", i)}
	case d.Name == "":
		return ValidationError{Code: "EMPTY_NAME", Message: fmt.Sprintf("device %q has no name", d.ID)}
	case d.Category == "":
		return ValidationError{Code: "EMPTY_CATEGORY", Message: fmt.Sprintf("device %q has no category", d.ID)}
	case d.InitialBudget <= 0:
		return ValidationError{Code: "INVALID_BUDGET", Message: fmt.Sprintf("device %q initial budget must be positive", d.ID)}
	case d.MaintenanceCost < 0:
		return ValidationError{Code: "INVALID_COST", Message: fmt.Sprintf("device %q maintenance cost is negative", d.ID)}
	case d.EndOfLifeMonth < 0:
		return ValidationError{Code: "INVALID_EOL", Message: fmt.Sprintf("device %q end-of-life month is negative", d.ID)}
	}
	return nil
}

func validateEvent(i int, e core.Event, categories map[string]bool) error {
	switch {
	case e.ID == "":
		return ValidationError{Code: "EMPTY_ID", Message: fmt.Sprintf("event #%d has no id", i)}
	case e.Title == "":
		return ValidationError{Code: "EMPTY_TITLE", Message: fmt.Sprintf("event %q has no title", e.ID)}
	case len(e.Choices) == 0:
		return ValidationError{Code: "NO_CHOICES", Message: fmt.Sprintf("event %q has no choices", e.ID)}
	case e.Weight < 0:
		return ValidationError{Code: "INVALID_WEIGHT", Message: fmt.Sprintf("event %q weight is negative", e.ID)}
	case e.MinMonth < 0:
		return ValidationError{Code: "INVALID_MONTH", Message: fmt.Sprintf("event %q min_month is negative", e.ID)}
	}

	for _, cat := range e.Categories {
		if !categories[cat] {
			return ValidationError{
				Code:    "UNKNOWN_CATEGORY",
				Message: fmt.Sprintf("event %q targets category %q which no device has", e.ID, cat),
			}
		}
	}

	choices := make(map[string]bool, len(e.Choices))
	for _, ch := range e.Choices {
		switch {
		case ch.ID == "":
			return ValidationError{Code: "EMPTY_ID", Message: fmt.Sprintf("event %q has a choice without id", e.ID)}
		case choices[ch.ID]:
			return ValidationError{Code: "DUPLICATE_CHOICE", Message: fmt.Sprintf("event %q repeats choice %q", e.ID, ch.ID)}
		case ch.Cost < 0:
			return ValidationError{Code: "INVALID_COST", Message: fmt.Sprintf("choice %s/%s cost is negative", e.ID, ch.ID)}
		}
		choices[ch.ID] = true
	}
	return nil
}
