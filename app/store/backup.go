package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/rotikasir/bakery-pos/app/localstore"
	"github.com/rotikasir/bakery-pos/models"
)

// ExportDocument is the backup file format.
type ExportDocument struct {
	Products     []localstore.ProductRecord     `json:"products"`
	Transactions []localstore.TransactionRecord `json:"transactions"`
	ExportDate   time.Time                      `json:"exportDate"`
}

// ImportResult reports which collections an import replaced.
type ImportResult struct {
	Products     bool `json:"products"`
	Transactions bool `json:"transactions"`
}

// Backup exports what the facade serves and imports into the local collections.
type Backup struct {
	facade *Facade
	local  *LocalBackend
}

func NewBackup(facade *Facade, local *LocalBackend) *Backup {
	return &Backup{
		facade: facade,
		local:  local,
	}
}

// Export collects all products and transactions, transactions oldest first.
func (b *Backup) Export(ctx context.Context) (*ExportDocument, error) {
	products, err := b.facade.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export products: %w", err)
	}
	transactions, err := b.facade.ListTransactions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to export transactions: %w", err)
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.Before(transactions[j].CreatedAt)
	})

	doc := &ExportDocument{
		Products:     make([]localstore.ProductRecord, len(products)),
		Transactions: make([]localstore.TransactionRecord, len(transactions)),
		ExportDate:   b.facade.opts.Now().UTC(),
	}
	for i, p := range products {
		doc.Products[i] = productToRecord(p)
	}
	for i, t := range transactions {
		doc.Transactions[i] = transactionToRecord(t)
	}
	return doc, nil
}

// WriteExport writes the export document as indented JSON.
func (b *Backup) WriteExport(ctx context.Context, w io.Writer) error {
	doc, err := b.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// FileName is the suggested download name for an export made now.
func (b *Backup) FileName() string {
	return fmt.Sprintf("kasir-backup-%s.json", b.facade.opts.Now().UTC().Format(time.DateOnly))
}

// Import replaces each local collection present as an array in the document.
// Records are stored as given; duplicate IDs are cleaned up on the next read.
func (b *Backup) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var doc struct {
		Products     json.RawMessage `json:"products"`
		Transactions json.RawMessage `json:"transactions"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ImportResult{}, fmt.Errorf("%w: invalid backup document: %v", models.ErrValidation, err)
	}

	var result ImportResult
	if isArray(doc.Products) {
		result.Products = b.local.ReplaceRaw(ctx, localstore.Products, doc.Products)
	}
	if isArray(doc.Transactions) {
		result.Transactions = b.local.ReplaceRaw(ctx, localstore.Transactions, doc.Transactions)
	}
	log.Printf("[store] imported backup: products=%t transactions=%t", result.Products, result.Transactions)
	return result, nil
}

// CleanupDuplicates removes repeated transaction IDs from the local collection.
func (b *Backup) CleanupDuplicates(ctx context.Context) int {
	removed := b.local.RemoveDuplicateTransactions(ctx)
	if removed > 0 {
		log.Printf("[store] removed %d duplicate transaction(s)", removed)
	}
	return removed
}

// ClearLocal deletes both local collections.
func (b *Backup) ClearLocal(ctx context.Context) {
	b.local.Clear(ctx)
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
