// Package composition decides whether an ingredient selection is an
// orderable marmita. It knows nothing about prices.
package composition

import "marmitaria/internal/models"

// Unbounded marks a category with no maximum.
const Unbounded = -1

// Rule is the cardinality allowed for one category.
type Rule struct {
	Min  int    `json:"min"`
	Max  int    `json:"max"`
	Hint string `json:"hint"`
}

func (r Rule) allows(count int) bool {
	return r.Max == Unbounded || count <= r.Max
}

func (r Rule) full(count int) bool {
	return r.Max != Unbounded && count >= r.Max
}

var rules = map[models.Category]Rule{
	models.CategoryRice:   {Min: 1, Max: 1, Hint: "Escolha 1 tipo de arroz"},
	models.CategoryBeans:  {Min: 0, Max: 1, Hint: "Escolha 1 tipo de feijão"},
	models.CategoryMeat:   {Min: 1, Max: 2, Hint: "Escolha até 2 carnes"},
	models.CategorySides:  {Min: 0, Max: Unbounded, Hint: "Escolha quantos quiser"},
	models.CategorySalads: {Min: 0, Max: Unbounded, Hint: "Escolha quantas quiser"},
}

// RuleFor returns the rule of a category. Every models.Category has one.
func RuleFor(c models.Category) Rule {
	return rules[c]
}

// CategoryRule pairs a category with its rule, for listing.
type CategoryRule struct {
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Rule
}

// Rules lists the rule table in display order.
func Rules() []CategoryRule {
	out := make([]CategoryRule, 0, len(rules))
	for _, c := range models.Categories() {
		out = append(out, CategoryRule{Category: c, Label: c.Label(), Rule: rules[c]})
	}
	return out
}
