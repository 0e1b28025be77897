package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a transaction was paid.
// Values outside the known set are accepted unless strict checking is requested.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentQRIS     PaymentMethod = "qris"
	PaymentTransfer PaymentMethod = "transfer"
)

// Known reports whether m is one of the built-in payment methods.
func (m PaymentMethod) Known() bool {
	switch m {
	case PaymentCash, PaymentQRIS, PaymentTransfer:
		return true
	}
	return false
}

// Normalize lower-cases and trims m.
func (m PaymentMethod) Normalize() PaymentMethod {
	return PaymentMethod(strings.ToLower(strings.TrimSpace(string(m))))
}

// Transaction is a finalized sale. It is immutable once stored, except for a
// full replacement through an upsert under the same ID.
type Transaction struct {
	ID            string            `json:"id"`
	Number        string            `json:"transaction_number"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []TransactionItem `json:"items"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	CashReceived  *decimal.Decimal  `json:"cash_received,omitempty"`
	Change        *decimal.Decimal  `json:"change,omitempty"`
}

// TransactionItem is one line of a transaction. Price is the unit price
// captured at sale time.
type TransactionItem struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// TransactionQuery restricts a transaction listing. Zero From/To leave the
// range open on that side; To is exclusive. Limit <= 0 means no limit.
type TransactionQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Matches reports whether createdAt falls inside the query range.
func (q TransactionQuery) Matches(createdAt time.Time) bool {
	if !q.From.IsZero() && createdAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !createdAt.Before(q.To) {
		return false
	}
	return true
}

// TransactionNumber returns the human-readable number for a transaction
// created at t.
func TransactionNumber(t time.Time) string {
	return fmt.Sprintf("TRX%d", t.UnixMilli())
}

// IsCash reports whether the transaction was paid in cash.
func (t Transaction) IsCash() bool {
	return t.PaymentMethod.Normalize() == PaymentCash
}

// Validate checks the stored-record invariants: every subtotal is price times
// quantity, the total is the sum of subtotals, and cash transactions carry a
// change equal to cash received minus total.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: transaction id is required", ErrValidation)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("%w: transaction timestamp is required", ErrValidation)
	}
	if len(t.Items) == 0 {
		return fmt.Errorf("%w: transaction has no items", ErrValidation)
	}
	if t.PaymentMethod.Normalize() == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	sum := decimal.Zero
	for i, item := range t.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has non-positive quantity", ErrValidation, i)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: item %d has negative price", ErrValidation, i)
		}
		if !item.Subtotal.Equal(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
			return fmt.Errorf("%w: item %d subtotal does not equal price times quantity", ErrValidation, i)
		}
		sum = sum.Add(item.Subtotal)
	}
	if !t.Total.Equal(sum) {
		return fmt.Errorf("%w: total %s does not equal item sum %s", ErrValidation, t.Total, sum)
	}
	if t.Total.IsNegative() {
		return fmt.Errorf("%w: total must not be negative", ErrValidation)
	}

	if !t.IsCash() {
		return nil
	}
	if t.CashReceived == nil || t.Change == nil {
		return fmt.Errorf("%w: cash transaction requires cash received and change", ErrValidation)
	}
	if !t.Change.Equal(t.CashReceived.Sub(t.Total)) {
		return fmt.Errorf("%w: change does not equal cash received minus total", ErrValidation)
	}
	if t.Change.IsNegative() {
		return fmt.Errorf("%w: cash received %s is less than total %s", ErrInsufficientPayment, t.CashReceived, t.Total)
	}
	return nil
}
