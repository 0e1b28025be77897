package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the bakery catalog.
// Stock is optional; nil means the stock is not tracked.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     *int            `json:"stock,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitzero"`
	UpdatedAt time.Time       `json:"updated_at,omitzero"`
}

// NewProduct holds the caller-supplied attributes of a product about to be created.
type NewProduct struct {
	Name  string
	Price decimal.Decimal
	Stock *int
}

// ProductPatch carries the fields to change on an existing product.
// Nil fields are left untouched.
type ProductPatch struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

func (p NewProduct) Validate() error {
	return validateProductFields(p.Name, p.Price, p.Stock)
}

func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Price != nil && p.Price.IsNegative() {
		return fmt.Errorf("%w: product price must not be negative", ErrValidation)
	}
	if p.Stock != nil && *p.Stock < 0 {
		return fmt.Errorf("%w: product stock must not be negative", ErrValidation)
	}
	return nil
}

// Apply returns a copy of product with the patch applied.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		stock := *p.Stock
		product.Stock = &stock
	}
	return product
}

func validateProductFields(name string, price decimal.Decimal, stock *int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: product price must not be negative", ErrValidation)
	}
	if stock != nil && *stock < 0 {
		return fmt.Errorf("%w: product stock must not be negative", ErrValidation)
	}
	return nil
}
