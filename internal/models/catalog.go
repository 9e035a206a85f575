package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Ingredient is a selectable marmita component.
type Ingredient struct {
	ID       string   `bson:"id" json:"id"`
	Name     string   `bson:"name" json:"name"`
	Category Category `bson:"category" json:"category"`
	Active   bool     `bson:"active" json:"active"`
}

// ExtraItem is a paid add-on priced per marmita.
type ExtraItem struct {
	ID     string          `bson:"id" json:"id"`
	Name   string          `bson:"name" json:"name"`
	Price  decimal.Decimal `bson:"price" json:"price"`
	Active bool            `bson:"active" json:"active"`
}

// Size of a marmita. Every size has exactly one base price in the catalog.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

var sizeLabels = map[Size]string{
	SizeSmall:  "Pequena",
	SizeMedium: "Média",
	SizeLarge:  "Grande",
}

// Sizes returns every size from smallest to largest.
func Sizes() []Size {
	return []Size{SizeSmall, SizeMedium, SizeLarge}
}

func ParseSize(raw string) (Size, error) {
	s := Size(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := sizeLabels[s]; !ok {
		return "", fmt.Errorf("unknown size %q", raw)
	}
	return s, nil
}

func (s Size) Label() string {
	if label, ok := sizeLabels[s]; ok {
		return label
	}
	return string(s)
}

// SizePrice is the persisted form of one entry of the size price table.
type SizePrice struct {
	Size  Size            `bson:"size" json:"size"`
	Price decimal.Decimal `bson:"price" json:"price"`
}

// DeliveryZone groups neighborhoods sharing one delivery fee.
type DeliveryZone struct {
	ID            string          `bson:"id" json:"id"`
	Name          string          `bson:"name" json:"name"`
	Fee           decimal.Decimal `bson:"fee" json:"fee"`
	Neighborhoods []string        `bson:"neighborhoods" json:"neighborhoods"`
}
