// Package pos holds the transient cart and the pure aggregates computed over
// loaded data. Nothing here performs I/O.
package pos

import (
	"fmt"

	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
)

// CartLine is one product in the cart. Product is a snapshot taken when the
// product was first added.
type CartLine struct {
	Product  models.Product
	Quantity int
	Subtotal decimal.Decimal
}

// Cart is an ordered set of lines keyed by product ID.
type Cart struct {
	lines []CartLine
	index map[string]int
}

func NewCart() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add puts qty units of product into the cart. Adding a product that is
// already present increments its quantity.
func (c *Cart) Add(product models.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", models.ErrValidation)
	}
	if product.ID == "" {
		return fmt.Errorf("%w: product id is required", models.ErrValidation)
	}
	if i, ok := c.index[product.ID]; ok {
		c.setQuantity(i, c.lines[i].Quantity+qty)
		return nil
	}
	c.index[product.ID] = len(c.lines)
	c.lines = append(c.lines, CartLine{Product: product})
	c.setQuantity(len(c.lines)-1, qty)
	return nil
}

// SetQuantity changes the quantity of a line; qty <= 0 removes it.
func (c *Cart) SetQuantity(productID string, qty int) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	c.setQuantity(i, qty)
}

func (c *Cart) Remove(productID string) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].Product.ID] = j
	}
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[string]int)
}

// Total is the sum of all line subtotals.
func (c *Cart) Total() decimal.Decimal {
	return CartTotal(c.lines)
}

func (c *Cart) setQuantity(i, qty int) {
	line := &c.lines[i]
	line.Quantity = qty
	line.Subtotal = line.Product.Price.Mul(decimal.NewFromInt(int64(qty)))
}

// CartTotal sums the subtotals of lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

// Change is cash received minus total. A negative result means the payment
// is insufficient.
func Change(cashReceived, total decimal.Decimal) decimal.Decimal {
	return cashReceived.Sub(total)
}
