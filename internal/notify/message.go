// Package notify delivers confirmed orders to the shop: a WhatsApp message
// through the Evolution API and a printed receipt.
package notify

import (
	"fmt"
	"strings"

	"marmitaria/internal/models"
	"marmitaria/internal/pricing"
)

// Names resolves catalog ids to display names. *catalog.Catalog satisfies it.
type Names interface {
	Ingredient(id string) (models.Ingredient, bool)
	Extra(id string) (models.ExtraItem, bool)
}

// Receipt is the rendered form of an order that both the sender and the
// printers consume.
type Receipt struct {
	OrderID string `json:"orderId"`
	Phone   string `json:"phone"`
	Text    string `json:"text"`
}

func NewReceipt(order models.OrderDetails, names Names) Receipt {
	return Receipt{OrderID: order.ID, Phone: order.Phone, Text: Message(order, names)}
}

var paymentLabels = map[models.PaymentMethod]string{
	models.PaymentPix:    "PIX",
	models.PaymentCredit: "CARTÃO DE CRÉDITO",
	models.PaymentDebit:  "CARTÃO DE DÉBITO",
	models.PaymentCash:   "DINHEIRO",
}

// Message renders the order as the WhatsApp text the shop receives.
func Message(order models.OrderDetails, names Names) string {
	var b strings.Builder
	b.WriteString("✅ *Pedido Confirmado!*\n")
	fmt.Fprintf(&b, "👤 Cliente: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "📞 Telefone: %s\n", order.Phone)

	for i, m := range order.Marmitas {
		fmt.Fprintf(&b, "🍱 Marmita %d - %s\n", i+1, strings.ToUpper(m.Size.Label()))
		if len(m.Ingredients) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(ingredientNames(m.Ingredients, names), ", "))
		}
		for _, id := range m.Extras {
			if extra, ok := names.Extra(id); ok {
				fmt.Fprintf(&b, "   + %s\n", extra.Name)
			}
		}
	}

	if order.DeliveryMethod == models.DeliveryMethodDelivery && order.Address != nil {
		a := order.Address
		street := a.Street + ", " + a.Number
		if a.Complement != "" {
			street += " (" + a.Complement + ")"
		}
		fmt.Fprintf(&b, "📍 Entrega: %s, %s - %s\n", street, a.Neighborhood, a.City)
	} else {
		b.WriteString("📍 Entrega: Retirada no local\n")
	}

	fmt.Fprintf(&b, "🧾 Subtotal: %s\n", pricing.Format(order.Subtotal))
	if order.DeliveryFee != nil {
		fmt.Fprintf(&b, "🛵 Taxa de entrega: %s\n", pricing.Format(*order.DeliveryFee))
	}
	fmt.Fprintf(&b, "💰 Total: %s\n", pricing.Format(order.TotalPrice))
	fmt.Fprintf(&b, "💳 Pagamento: %s\n", paymentLabel(order.PaymentMethod))
	if order.ChangeFor != nil {
		fmt.Fprintf(&b, "💵 Troco para: %s (troco %s)\n",
			pricing.Format(*order.ChangeFor), pricing.Format(pricing.ChangeDue(order.ChangeFor, order.TotalPrice)))
	}
	if eta := order.EstimatedTime; eta != nil {
		if eta.Min == eta.Max {
			fmt.Fprintf(&b, "⏱️ Tempo estimado: %d min\n", eta.Min)
		} else {
			fmt.Fprintf(&b, "⏱️ Tempo estimado: %d-%d min\n", eta.Min, eta.Max)
		}
	}

	observation := order.Observation
	if observation == "" {
		observation = "Nenhuma"
	}
	fmt.Fprintf(&b, "📝 Observações: %s\n", observation)
	return b.String()
}

func ingredientNames(ids []string, names Names) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if ing, ok := names.Ingredient(id); ok {
			out = append(out, ing.Name)
		} else {
			out = append(out, id)
		}
	}
	return out
}

func paymentLabel(p models.PaymentMethod) string {
	if label, ok := paymentLabels[p]; ok {
		return label
	}
	return strings.ToUpper(string(p))
}
