package store

import (
	"github.com/google/uuid"
	"github.com/rotikasir/bakery-pos/app/localstore"
	"github.com/rotikasir/bakery-pos/app/remote"
	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
)

// --- local shape ---

func productFromRecord(r localstore.ProductRecord) models.Product {
	return models.Product{
		ID:    r.ID,
		Name:  r.Name,
		Price: decimal.NewFromFloat(r.Price),
		Stock: r.Stock,
	}
}

func productToRecord(p models.Product) localstore.ProductRecord {
	return localstore.ProductRecord{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.InexactFloat64(),
		Stock: p.Stock,
	}
}

// transactionFromRecord fills in what the local shape lacks: the number is
// derived from the timestamp and subtotals are recomputed.
func transactionFromRecord(r localstore.TransactionRecord) models.Transaction {
	items := make([]models.TransactionItem, len(r.Items))
	for i, it := range r.Items {
		price := decimal.NewFromFloat(it.Price)
		items[i] = models.TransactionItem{
			ProductID:   it.ProductID,
			ProductName: it.Name,
			Price:       price,
			Quantity:    it.Quantity,
			Subtotal:    price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
	}
	return models.Transaction{
		ID:            r.ID,
		Number:        models.TransactionNumber(r.Date),
		CreatedAt:     r.Date,
		Items:         items,
		Total:         decimal.NewFromFloat(r.Total),
		PaymentMethod: models.PaymentMethod(r.PaymentMethod),
		CashReceived:  decimalFromFloatPtr(r.CashReceived),
		Change:        decimalFromFloatPtr(r.Change),
	}
}

func transactionToRecord(t models.Transaction) localstore.TransactionRecord {
	items := make([]localstore.ItemRecord, len(t.Items))
	for i, it := range t.Items {
		items[i] = localstore.ItemRecord{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
		}
	}
	return localstore.TransactionRecord{
		ID:            t.ID,
		Date:          t.CreatedAt,
		Items:         items,
		Total:         t.Total.InexactFloat64(),
		PaymentMethod: string(t.PaymentMethod),
		CashReceived:  floatFromDecimalPtr(t.CashReceived),
		Change:        floatFromDecimalPtr(t.Change),
	}
}

// --- remote shape ---

func productFromRow(r remote.ProductRow) models.Product {
	return models.Product{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		Stock:     r.Stock,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func productToRow(p models.Product) *remote.ProductRow {
	return &remote.ProductRow{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func transactionFromRow(r remote.TransactionRow) models.Transaction {
	items := make([]models.TransactionItem, len(r.TransactionItems))
	for i, it := range r.TransactionItems {
		items[i] = models.TransactionItem{
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
		}
		if it.ProductID != nil {
			items[i].ProductID = *it.ProductID
		}
	}
	number := r.TransactionNumber
	if number == "" {
		number = models.TransactionNumber(r.CreatedAt)
	}
	return models.Transaction{
		ID:            r.ID,
		Number:        number,
		CreatedAt:     r.CreatedAt,
		Items:         items,
		Total:         r.Total,
		PaymentMethod: models.PaymentMethod(r.PaymentMethod),
		CashReceived:  decimalFromNull(r.CashReceived),
		Change:        decimalFromNull(r.ChangeAmount),
	}
}

func transactionToRow(t models.Transaction) *remote.TransactionRow {
	items := make([]remote.TransactionItemRow, len(t.Items))
	for i, it := range t.Items {
		items[i] = remote.TransactionItemRow{
			ID:            uuid.NewString(),
			TransactionID: t.ID,
			ProductName:   it.ProductName,
			Price:         it.Price,
			Quantity:      it.Quantity,
			Subtotal:      it.Subtotal,
			Position:      i,
		}
		if it.ProductID != "" {
			id := it.ProductID
			items[i].ProductID = &id
		}
	}
	number := t.Number
	if number == "" {
		number = models.TransactionNumber(t.CreatedAt)
	}
	return &remote.TransactionRow{
		ID:                t.ID,
		TransactionNumber: number,
		Total:             t.Total,
		PaymentMethod:     string(t.PaymentMethod),
		CashReceived:      nullFromDecimal(t.CashReceived),
		ChangeAmount:      nullFromDecimal(t.Change),
		CreatedAt:         t.CreatedAt,
		TransactionItems:  items,
	}
}

// --- helpers ---

func decimalFromFloatPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func floatFromDecimalPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func decimalFromNull(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func nullFromDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
