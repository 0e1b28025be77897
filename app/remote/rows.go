package remote

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRow is the remote shape of a product.
type ProductRow struct {
	ID        string          `gorm:"primaryKey"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock     *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *ProductRow) TableName() string {
	return "products"
}

// TransactionRow is the remote shape of a transaction. Unlike the local shape
// it carries a transaction number and its items live in their own table.
type TransactionRow struct {
	ID                string               `gorm:"primaryKey"`
	TransactionNumber string               `gorm:"not null"`
	Total             decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	PaymentMethod     string               `gorm:"not null"`
	CashReceived      decimal.NullDecimal  `gorm:"type:decimal(12,2)"`
	ChangeAmount      decimal.NullDecimal  `gorm:"type:decimal(12,2)"`
	CreatedAt         time.Time            `gorm:"index;not null"`
	TransactionItems  []TransactionItemRow `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

func (t *TransactionRow) TableName() string {
	return "transactions"
}

type TransactionItemRow struct {
	ID            string          `gorm:"primaryKey"`
	TransactionID string          `gorm:"index;not null"`
	ProductID     *string
	ProductName   string          `gorm:"not null"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity      int             `gorm:"not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Position      int             `gorm:"not null"`
}

func (i *TransactionItemRow) TableName() string {
	return "transaction_items"
}
