package composition

import (
	"errors"
	"slices"

	"marmitaria/internal/models"
)

var (
	// ErrIncomplete is returned when a composition lacks its required rice or meat.
	ErrIncomplete = errors.New("select rice and meat")
	// ErrNotSelectable is returned when an ingredient is inactive, unknown, or
	// its category is already full.
	ErrNotSelectable = errors.New("ingredient cannot be selected")
)

// Lookup resolves the ingredients that are currently selectable.
type Lookup interface {
	ActiveIngredient(id string) (models.Ingredient, bool)
}

// Counts tallies the selection per category. Ids that are not active
// ingredients are not counted.
func Counts(selection []string, lookup Lookup) map[models.Category]int {
	counts := make(map[models.Category]int, len(rules))
	for _, id := range selection {
		if ing, ok := lookup.ActiveIngredient(id); ok {
			counts[ing.Category]++
		}
	}
	return counts
}

// CanAdd reports whether toggling id is allowed. Deselecting is always
// allowed; selecting is refused once the category is at its maximum.
func CanAdd(id string, selection []string, lookup Lookup) bool {
	if slices.Contains(selection, id) {
		return true
	}
	ing, ok := lookup.ActiveIngredient(id)
	if !ok {
		return false
	}
	return !RuleFor(ing.Category).full(Counts(selection, lookup)[ing.Category])
}

// Toggle removes id when selected and appends it otherwise. The input slice
// is never modified.
func Toggle(id string, selection []string, lookup Lookup) ([]string, error) {
	if i := slices.Index(selection, id); i >= 0 {
		return slices.Delete(slices.Clone(selection), i, i+1), nil
	}
	if !CanAdd(id, selection, lookup) {
		return nil, ErrNotSelectable
	}
	return append(slices.Clone(selection), id), nil
}

// IsComplete reports whether every required category (rice, meat) is within
// its bounds. Optional categories never block a commit.
func IsComplete(selection []string, lookup Lookup) bool {
	counts := Counts(selection, lookup)
	for c, rule := range rules {
		if rule.Min == 0 {
			continue
		}
		n := counts[c]
		if n < rule.Min || !rule.allows(n) {
			return false
		}
	}
	return true
}

// Validate is IsComplete with the customer-facing reason.
func Validate(selection []string, lookup Lookup) error {
	if !IsComplete(selection, lookup) {
		return ErrIncomplete
	}
	return nil
}

// Option is one ingredient as the builder shows it.
type Option struct {
	models.Ingredient
	Selected   bool `json:"selected"`
	Selectable bool `json:"selectable"`
}

// Group is one category section of the builder.
type Group struct {
	CategoryRule
	Selected int      `json:"selected"`
	Options  []Option `json:"options"`
}

// Groups lays out the active ingredients per category with their current
// selectable state. Categories with no active ingredients are omitted.
func Groups(active []models.Ingredient, selection []string, lookup Lookup) []Group {
	counts := Counts(selection, lookup)
	byCategory := make(map[models.Category][]Option)
	for _, ing := range active {
		byCategory[ing.Category] = append(byCategory[ing.Category], Option{
			Ingredient: ing,
			Selected:   slices.Contains(selection, ing.ID),
			Selectable: CanAdd(ing.ID, selection, lookup),
		})
	}

	groups := make([]Group, 0, len(byCategory))
	for _, cr := range Rules() {
		opts := byCategory[cr.Category]
		if len(opts) == 0 {
			continue
		}
		groups = append(groups, Group{CategoryRule: cr, Selected: counts[cr.Category], Options: opts})
	}
	return groups
}
