package order

import (
	"slices"

	"github.com/shopspring/decimal"

	"marmitaria/internal/composition"
	"marmitaria/internal/models"
	"marmitaria/internal/pricing"
)

// Line is a cart entry priced against the current catalog.
type Line struct {
	models.MarmitaItem
	Price decimal.Decimal `json:"price"`
}

// Draft is the meal being composed.
type Draft struct {
	Size        models.Size         `json:"size"`
	Ingredients []string            `json:"ingredients"`
	Extras      []string            `json:"extras"`
	Price       decimal.Decimal     `json:"price"`
	Complete    bool                `json:"complete"`
	Groups      []composition.Group `json:"groups"`
}

// View is a read-only projection of a session.
type View struct {
	ID          string               `json:"id"`
	State       State                `json:"state"`
	CartID      string               `json:"cartId"`
	Cart        []Line               `json:"cart"`
	Subtotal    decimal.Decimal      `json:"subtotal"`
	Draft       Draft                `json:"draft"`
	Observation string               `json:"observation"`
	Order       *models.OrderDetails `json:"order,omitempty"`
}

func (s *Session) View() View {
	snap := s.catalog.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:          s.id,
		State:       s.state,
		CartID:      s.cartID,
		Cart:        make([]Line, 0, len(s.cart)),
		Subtotal:    pricing.CartSubtotal(snap, s.cart),
		Observation: s.observation,
	}
	for _, m := range s.cart {
		v.Cart = append(v.Cart, Line{MarmitaItem: m.Clone(), Price: pricing.PriceOfMeal(snap, m)})
	}

	draft := models.MarmitaItem{Size: s.size, Extras: s.extras}
	v.Draft = Draft{
		Size:        s.size,
		Ingredients: slices.Clone(s.ingredients),
		Extras:      slices.Clone(s.extras),
		Price:       pricing.PriceOfMeal(snap, draft),
		Complete:    composition.IsComplete(s.ingredients, snap),
		Groups:      composition.Groups(snap.ListActiveIngredients(), s.ingredients, snap),
	}
	if v.Draft.Ingredients == nil {
		v.Draft.Ingredients = []string{}
	}
	if v.Draft.Extras == nil {
		v.Draft.Extras = []string{}
	}
	if s.order != nil {
		o := s.order.Clone()
		v.Order = &o
	}
	return v
}
