package models

import (
	"fmt"
	"strings"
)

// Category is the closed set of ingredient groups a marmita is assembled from.
type Category string

const (
	CategoryRice   Category = "rice"
	CategoryBeans  Category = "beans"
	CategoryMeat   Category = "meat"
	CategorySides  Category = "sides"
	CategorySalads Category = "salads"
)

var categoryLabels = map[Category]string{
	CategoryRice:   "Arroz",
	CategoryBeans:  "Feijão",
	CategoryMeat:   "Carnes",
	CategorySides:  "Acompanhamentos",
	CategorySalads: "Saladas",
}

// Categories returns every category in builder display order.
func Categories() []Category {
	return []Category{CategoryRice, CategoryBeans, CategoryMeat, CategorySides, CategorySalads}
}

// ParseCategory accepts the wire name of a category, case-insensitively.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the name shown to customers.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}
