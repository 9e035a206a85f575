// Package catalog holds the read-only reference data the ordering core prices
// and validates against: ingredients, extras, size prices and delivery zones.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"marmitaria/internal/models"
)

// ErrInconsistent is wrapped by every catalog load failure.
var ErrInconsistent = errors.New("inconsistent catalog")

// Data is the raw material a Catalog is built from.
type Data struct {
	Ingredients []models.Ingredient
	Extras      []models.ExtraItem
	SizePrices  []models.SizePrice
	Zones       []models.DeliveryZone
}

// Catalog is an immutable snapshot. Build one with New and replace it
// wholesale when the underlying data changes.
type Catalog struct {
	ingredients []models.Ingredient
	extras      []models.ExtraItem
	zones       []models.DeliveryZone

	ingredientByID map[string]models.Ingredient
	extraByID      map[string]models.ExtraItem
	sizePrice      map[models.Size]decimal.Decimal
	zoneByHood     map[string]int
}

// Neighborhood is one entry of the checkout neighborhood picker.
type Neighborhood struct {
	Name   string          `json:"name"`
	ZoneID string          `json:"zoneId"`
	Fee    decimal.Decimal `json:"fee"`
}

// New validates data and builds a snapshot. Duplicate ids, a neighborhood
// claimed by two zones, a size without a price and negative amounts are all
// rejected here rather than surfacing later as wrong totals.
func New(data Data) (*Catalog, error) {
	c := &Catalog{
		ingredientByID: make(map[string]models.Ingredient, len(data.Ingredients)),
		extraByID:      make(map[string]models.ExtraItem, len(data.Extras)),
		sizePrice:      make(map[models.Size]decimal.Decimal, len(data.SizePrices)),
		zoneByHood:     make(map[string]int),
	}

	for _, ing := range data.Ingredients {
		id := strings.TrimSpace(ing.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: ingredient %q has no id", ErrInconsistent, ing.Name)
		}
		if !ing.Category.Valid() {
			return nil, fmt.Errorf("%w: ingredient %s has unknown category %q", ErrInconsistent, id, ing.Category)
		}
		if _, dup := c.ingredientByID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate ingredient id %s", ErrInconsistent, id)
		}
		ing.ID = id
		c.ingredientByID[id] = ing
		c.ingredients = append(c.ingredients, ing)
	}

	for _, extra := range data.Extras {
		id := strings.TrimSpace(extra.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: extra %q has no id", ErrInconsistent, extra.Name)
		}
		if extra.Price.IsNegative() {
			return nil, fmt.Errorf("%w: extra %s has negative price %s", ErrInconsistent, id, extra.Price)
		}
		if _, dup := c.extraByID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate extra id %s", ErrInconsistent, id)
		}
		extra.ID = id
		c.extraByID[id] = extra
		c.extras = append(c.extras, extra)
	}

	for _, sp := range data.SizePrices {
		if _, err := models.ParseSize(string(sp.Size)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
		if sp.Price.IsNegative() {
			return nil, fmt.Errorf("%w: size %s has negative price %s", ErrInconsistent, sp.Size, sp.Price)
		}
		if _, dup := c.sizePrice[sp.Size]; dup {
			return nil, fmt.Errorf("%w: size %s priced twice", ErrInconsistent, sp.Size)
		}
		c.sizePrice[sp.Size] = sp.Price
	}
	for _, size := range models.Sizes() {
		if _, ok := c.sizePrice[size]; !ok {
			return nil, fmt.Errorf("%w: size %s has no price", ErrInconsistent, size)
		}
	}

	zoneIDs := make(map[string]struct{}, len(data.Zones))
	for i, zone := range data.Zones {
		if strings.TrimSpace(zone.ID) == "" {
			return nil, fmt.Errorf("%w: zone %q has no id", ErrInconsistent, zone.Name)
		}
		if _, dup := zoneIDs[zone.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate zone id %s", ErrInconsistent, zone.ID)
		}
		zoneIDs[zone.ID] = struct{}{}
		if zone.Fee.IsNegative() {
			return nil, fmt.Errorf("%w: zone %s has negative fee %s", ErrInconsistent, zone.ID, zone.Fee)
		}
		for _, hood := range zone.Neighborhoods {
			if prev, taken := c.zoneByHood[hood]; taken {
				return nil, fmt.Errorf("%w: neighborhood %q is in zones %s and %s",
					ErrInconsistent, hood, data.Zones[prev].ID, zone.ID)
			}
			c.zoneByHood[hood] = i
		}
		zone.Neighborhoods = append([]string(nil), zone.Neighborhoods...)
		c.zones = append(c.zones, zone)
	}

	return c, nil
}

// MustNew is New for static data known to be consistent.
func MustNew(data Data) *Catalog {
	c, err := New(data)
	if err != nil {
		panic(err)
	}
	return c
}

// ListActiveIngredients returns the ingredients a customer may select, in catalog order.
func (c *Catalog) ListActiveIngredients() []models.Ingredient {
	out := make([]models.Ingredient, 0, len(c.ingredients))
	for _, ing := range c.ingredients {
		if ing.Active {
			out = append(out, ing)
		}
	}
	return out
}

// ListIngredients returns every ingredient, active or not.
func (c *Catalog) ListIngredients() []models.Ingredient {
	return append([]models.Ingredient(nil), c.ingredients...)
}

func (c *Catalog) Ingredient(id string) (models.Ingredient, bool) {
	ing, ok := c.ingredientByID[id]
	return ing, ok
}

// ActiveIngredient reports the ingredient only when it is currently selectable.
func (c *Catalog) ActiveIngredient(id string) (models.Ingredient, bool) {
	ing, ok := c.ingredientByID[id]
	if !ok || !ing.Active {
		return models.Ingredient{}, false
	}
	return ing, true
}

func (c *Catalog) ListExtras() []models.ExtraItem {
	return append([]models.ExtraItem(nil), c.extras...)
}

// ListActiveExtras returns the extras currently offered.
func (c *Catalog) ListActiveExtras() []models.ExtraItem {
	out := make([]models.ExtraItem, 0, len(c.extras))
	for _, extra := range c.extras {
		if extra.Active {
			out = append(out, extra)
		}
	}
	return out
}

func (c *Catalog) Extra(id string) (models.ExtraItem, bool) {
	extra, ok := c.extraByID[id]
	return extra, ok
}

// SizePrice is total over models.Sizes(); New guarantees it.
func (c *Catalog) SizePrice(size models.Size) decimal.Decimal {
	return c.sizePrice[size]
}

// SizePrices returns the price table in size order.
func (c *Catalog) SizePrices() []models.SizePrice {
	out := make([]models.SizePrice, 0, len(c.sizePrice))
	for _, size := range models.Sizes() {
		out = append(out, models.SizePrice{Size: size, Price: c.sizePrice[size]})
	}
	return out
}

// ZoneFor resolves the zone that serves neighborhood, if any.
func (c *Catalog) ZoneFor(neighborhood string) (models.DeliveryZone, bool) {
	i, ok := c.zoneByHood[neighborhood]
	if !ok {
		return models.DeliveryZone{}, false
	}
	return c.zones[i], true
}

func (c *Catalog) Zones() []models.DeliveryZone {
	return append([]models.DeliveryZone(nil), c.zones...)
}

// Neighborhoods flattens the zones into the list the checkout form offers,
// in zone order.
func (c *Catalog) Neighborhoods() []Neighborhood {
	out := make([]Neighborhood, 0, len(c.zoneByHood))
	for _, zone := range c.zones {
		for _, hood := range zone.Neighborhoods {
			out = append(out, Neighborhood{Name: hood, ZoneID: zone.ID, Fee: zone.Fee})
		}
	}
	return out
}

// Data returns the snapshot's contents, for reseeding or copying.
func (c *Catalog) Data() Data {
	zones := make([]models.DeliveryZone, len(c.zones))
	for i, z := range c.zones {
		z.Neighborhoods = append([]string(nil), z.Neighborhoods...)
		zones[i] = z
	}
	return Data{
		Ingredients: c.ListIngredients(),
		Extras:      c.ListExtras(),
		SizePrices:  c.SizePrices(),
		Zones:       zones,
	}
}

// IngredientsByCategory groups active ingredients for display.
func (c *Catalog) IngredientsByCategory() map[models.Category][]models.Ingredient {
	out := make(map[models.Category][]models.Ingredient)
	for _, ing := range c.ListActiveIngredients() {
		out[ing.Category] = append(out[ing.Category], ing)
	}
	return out
}
