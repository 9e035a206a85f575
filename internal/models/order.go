package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

type PaymentMethod string

const (
	PaymentPix    PaymentMethod = "pix"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCash   PaymentMethod = "cash"
)

// Address is where a delivery order goes. Only Complement is optional.
type Address struct {
	Street       string `bson:"street" json:"street" validate:"required"`
	Number       string `bson:"number" json:"number" validate:"required"`
	Complement   string `bson:"complement,omitempty" json:"complement,omitempty"`
	Neighborhood string `bson:"neighborhood" json:"neighborhood" validate:"required"`
	City         string `bson:"city" json:"city" validate:"required"`
}

// MarmitaItem is one committed meal in a cart. Prices are not stored here;
// they are looked up from the catalog whenever the cart is priced.
type MarmitaItem struct {
	ID          string   `bson:"id" json:"id"`
	Size        Size     `bson:"size" json:"size"`
	Ingredients []string `bson:"ingredients" json:"ingredients"`
	Extras      []string `bson:"extras" json:"extras"`
}

// Clone returns a copy that shares no backing arrays with m.
func (m MarmitaItem) Clone() MarmitaItem {
	m.Ingredients = append([]string(nil), m.Ingredients...)
	m.Extras = append([]string(nil), m.Extras...)
	return m
}

// EstimatedTime is a preparation/delivery window in minutes.
type EstimatedTime struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

// OrderDetails is the frozen record of a confirmed order.
type OrderDetails struct {
	ID             string           `bson:"_id" json:"id"`
	SessionID      string           `bson:"sessionId" json:"sessionId"`
	Marmitas       []MarmitaItem    `bson:"marmitas" json:"marmitas"`
	DeliveryMethod DeliveryMethod   `bson:"deliveryMethod" json:"deliveryMethod"`
	Address        *Address         `bson:"address,omitempty" json:"address,omitempty"`
	PaymentMethod  PaymentMethod    `bson:"paymentMethod" json:"paymentMethod"`
	CustomerName   string           `bson:"customerName" json:"customerName"`
	Phone          string           `bson:"phone" json:"phone"`
	Observation    string           `bson:"observation,omitempty" json:"observation,omitempty"`
	Subtotal       decimal.Decimal  `bson:"subtotal" json:"subtotal"`
	TotalPrice     decimal.Decimal  `bson:"totalPrice" json:"totalPrice"`
	DeliveryFee    *decimal.Decimal `bson:"deliveryFee,omitempty" json:"deliveryFee,omitempty"`
	ChangeFor      *decimal.Decimal `bson:"changeFor,omitempty" json:"changeFor,omitempty"`
	EstimatedTime  *EstimatedTime   `bson:"estimatedTime,omitempty" json:"estimatedTime,omitempty"`
	CreatedAt      time.Time        `bson:"createdAt" json:"createdAt"`
}

// Clone deep-copies the order so holders cannot mutate each other's view.
func (o OrderDetails) Clone() OrderDetails {
	marmitas := make([]MarmitaItem, len(o.Marmitas))
	for i, m := range o.Marmitas {
		marmitas[i] = m.Clone()
	}
	o.Marmitas = marmitas
	if o.Address != nil {
		addr := *o.Address
		o.Address = &addr
	}
	if o.DeliveryFee != nil {
		fee := *o.DeliveryFee
		o.DeliveryFee = &fee
	}
	if o.ChangeFor != nil {
		change := *o.ChangeFor
		o.ChangeFor = &change
	}
	if o.EstimatedTime != nil {
		eta := *o.EstimatedTime
		o.EstimatedTime = &eta
	}
	return o
}
