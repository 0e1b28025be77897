package pos

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
)

// Payment describes how the customer pays for a cart.
// CashReceived is only consulted for cash payments.
type Payment struct {
	Method       models.PaymentMethod
	CashReceived decimal.Decimal
	// Strict rejects methods outside cash, qris and transfer.
	Strict bool
}

// NewTransactionID derives an identifier from the millisecond timestamp plus a
// three-digit random suffix. Uniqueness is probable, not guaranteed.
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("%d%03d", now.UnixMilli(), rand.IntN(1000))
}

// Checkout converts a finalized cart into a transaction. For cash payments a
// cash amount below the total is rejected with models.ErrInsufficientPayment.
func Checkout(cart *Cart, payment Payment, now time.Time) (models.Transaction, error) {
	if cart == nil || cart.Len() == 0 {
		return models.Transaction{}, fmt.Errorf("%w: cart is empty", models.ErrValidation)
	}

	method := payment.Method.Normalize()
	if method == "" {
		return models.Transaction{}, fmt.Errorf("%w: payment method is required", models.ErrValidation)
	}
	if payment.Strict && !method.Known() {
		return models.Transaction{}, fmt.Errorf("%w: unknown payment method %q", models.ErrValidation, method)
	}

	lines := cart.Lines()
	items := make([]models.TransactionItem, len(lines))
	for i, line := range lines {
		items[i] = models.TransactionItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Price:       line.Product.Price,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal,
		}
	}

	tx := models.Transaction{
		ID:            NewTransactionID(now),
		Number:        models.TransactionNumber(now),
		CreatedAt:     now,
		Items:         items,
		Total:         CartTotal(lines),
		PaymentMethod: method,
	}

	if method == models.PaymentCash {
		change := Change(payment.CashReceived, tx.Total)
		if change.IsNegative() {
			return models.Transaction{}, fmt.Errorf("%w: cash received %s is less than total %s",
				models.ErrInsufficientPayment, payment.CashReceived, tx.Total)
		}
		cash := payment.CashReceived
		tx.CashReceived = &cash
		tx.Change = &change
	}

	return tx, nil
}
