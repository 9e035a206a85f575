package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"marmitaria/internal/models"
)

// ChangeError flags a cash "change for" amount that does not cover the
// total. It is advisory: callers surface it and carry on.
type ChangeError struct {
	ChangeFor decimal.Decimal
	Total     decimal.Decimal
}

func (e *ChangeError) Error() string {
	return fmt.Sprintf("change for %s is less than the total %s", Format(e.ChangeFor), Format(e.Total))
}

// CheckChange returns a *ChangeError when a cash order asks for change from
// an amount below total. Non-cash orders and orders without an amount pass.
func CheckChange(payment models.PaymentMethod, changeFor *decimal.Decimal, total decimal.Decimal) error {
	if payment != models.PaymentCash || changeFor == nil {
		return nil
	}
	if changeFor.LessThan(total) {
		return &ChangeError{ChangeFor: *changeFor, Total: total}
	}
	return nil
}

// ChangeDue is what the courier hands back; zero when nothing is owed.
func ChangeDue(changeFor *decimal.Decimal, total decimal.Decimal) decimal.Decimal {
	if changeFor == nil || changeFor.LessThanOrEqual(total) {
		return decimal.Zero
	}
	return changeFor.Sub(total)
}
