// Package pricing computes meal, cart and order totals. All arithmetic is
// exact decimal; rounding happens only in Format.
package pricing

import (
	"github.com/shopspring/decimal"

	"marmitaria/internal/models"
)

// PriceList is the slice of the catalog pricing reads. *catalog.Catalog
// satisfies it.
type PriceList interface {
	SizePrice(size models.Size) decimal.Decimal
	Extra(id string) (models.ExtraItem, bool)
	ZoneFor(neighborhood string) (models.DeliveryZone, bool)
}

var estimatedTimes = map[models.DeliveryMethod]models.EstimatedTime{
	models.DeliveryMethodDelivery: {Min: 60, Max: 90},
	models.DeliveryMethodPickup:   {Min: 20, Max: 20},
}

// PriceOfMeal is the size base price plus each extra at its current catalog
// price. Extras no longer in the catalog add nothing.
func PriceOfMeal(prices PriceList, meal models.MarmitaItem) decimal.Decimal {
	total := prices.SizePrice(meal.Size)
	for _, id := range meal.Extras {
		if extra, ok := prices.Extra(id); ok {
			total = total.Add(extra.Price)
		}
	}
	return total
}

// CartSubtotal sums PriceOfMeal over the cart; an empty cart is zero.
func CartSubtotal(prices PriceList, cart []models.MarmitaItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, meal := range cart {
		subtotal = subtotal.Add(PriceOfMeal(prices, meal))
	}
	return subtotal
}

// DeliveryFee is the fee of the zone serving neighborhood. Empty or unknown
// neighborhoods are free; callers that care use ZoneMatched.
func DeliveryFee(prices PriceList, neighborhood string) decimal.Decimal {
	if neighborhood == "" {
		return decimal.Zero
	}
	if zone, ok := prices.ZoneFor(neighborhood); ok {
		return zone.Fee
	}
	return decimal.Zero
}

// ZoneMatched reports whether neighborhood belongs to a delivery zone.
func ZoneMatched(prices PriceList, neighborhood string) bool {
	_, ok := prices.ZoneFor(neighborhood)
	return ok
}

// CartTotal adds the delivery fee only for delivery orders with a neighborhood.
func CartTotal(prices PriceList, cart []models.MarmitaItem, method models.DeliveryMethod, neighborhood string) decimal.Decimal {
	return CartSubtotal(prices, cart).Add(feeFor(prices, method, neighborhood))
}

func feeFor(prices PriceList, method models.DeliveryMethod, neighborhood string) decimal.Decimal {
	if method != models.DeliveryMethodDelivery || neighborhood == "" {
		return decimal.Zero
	}
	return DeliveryFee(prices, neighborhood)
}

// EstimatedTime is a fixed policy per delivery method.
func EstimatedTime(method models.DeliveryMethod) models.EstimatedTime {
	if eta, ok := estimatedTimes[method]; ok {
		return eta
	}
	return estimatedTimes[models.DeliveryMethodPickup]
}

// Quote is the checkout summary for a cart.
type Quote struct {
	Subtotal      decimal.Decimal      `json:"subtotal"`
	DeliveryFee   decimal.Decimal      `json:"deliveryFee"`
	Total         decimal.Decimal      `json:"total"`
	EstimatedTime models.EstimatedTime `json:"estimatedTime"`
	ZoneMatched   bool                 `json:"zoneMatched"`
}

func NewQuote(prices PriceList, cart []models.MarmitaItem, method models.DeliveryMethod, neighborhood string) Quote {
	subtotal := CartSubtotal(prices, cart)
	fee := feeFor(prices, method, neighborhood)
	return Quote{
		Subtotal:      subtotal,
		DeliveryFee:   fee,
		Total:         subtotal.Add(fee),
		EstimatedTime: EstimatedTime(method),
		ZoneMatched:   method != models.DeliveryMethodDelivery || ZoneMatched(prices, neighborhood),
	}
}
