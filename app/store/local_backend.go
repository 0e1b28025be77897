package store

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"

	"github.com/rotikasir/bakery-pos/app/localstore"
	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
)

// DefaultProducts seeds an empty local catalog.
var DefaultProducts = []models.Product{
	{ID: "1", Name: "Roti Tawar", Price: decimal.NewFromInt(12000)},
	{ID: "2", Name: "Roti Coklat", Price: decimal.NewFromInt(15000)},
	{ID: "3", Name: "Roti Keju", Price: decimal.NewFromInt(18000)},
	{ID: "4", Name: "Croissant", Price: decimal.NewFromInt(25000)},
	{ID: "5", Name: "Donat Gula", Price: decimal.NewFromInt(8000)},
	{ID: "6", Name: "Donat Coklat", Price: decimal.NewFromInt(10000)},
	{ID: "7", Name: "Roti Pisang", Price: decimal.NewFromInt(13000)},
	{ID: "8", Name: "Roti Abon", Price: decimal.NewFromInt(16000)},
}

// LocalBackend persists into the local collections by rewriting the whole
// collection on every write. It never returns storage errors.
type LocalBackend struct {
	// mu serializes every read-modify-write of the collections. Reads take it
	// too since they may seed or rewrite a collection.
	mu      sync.Mutex
	adapter *localstore.Adapter
	seed    bool
}

// NewLocalBackend returns a local backend. With seed set, a missing product
// collection is initialized with DefaultProducts.
func NewLocalBackend(adapter *localstore.Adapter, seed bool) *LocalBackend {
	return &LocalBackend{
		adapter: adapter,
		seed:    seed,
	}
}

// ListProducts returns the catalog ordered by name, like the remote backend.
func (b *LocalBackend) ListProducts(ctx context.Context) ([]models.Product, error) {
	b.mu.Lock()
	records := b.loadProducts(ctx)
	b.mu.Unlock()

	products := make([]models.Product, len(records))
	for i, r := range records {
		products[i] = productFromRecord(r)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func (b *LocalBackend) SaveProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	records, _ := upsertByID(b.loadProducts(ctx), productToRecord(p), productRecordID)
	localstore.Write(ctx, b.adapter, localstore.Products, records)
	return &p, nil
}

func (b *LocalBackend) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := b.loadProducts(ctx)
	for i, r := range records {
		if r.ID != id {
			continue
		}
		updated := patch.Apply(productFromRecord(r))
		records[i] = productToRecord(updated)
		localstore.Write(ctx, b.adapter, localstore.Products, records)
		return &updated, nil
	}
	return nil, models.ErrProductNotFound
}

func (b *LocalBackend) DeleteProduct(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := b.loadProducts(ctx)
	kept := make([]localstore.ProductRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return models.ErrProductNotFound
	}
	localstore.Write(ctx, b.adapter, localstore.Products, kept)
	return nil
}

func (b *LocalBackend) ListTransactions(ctx context.Context, q models.TransactionQuery) ([]models.Transaction, error) {
	b.mu.Lock()
	records := b.loadTransactions(ctx)
	b.mu.Unlock()

	transactions := make([]models.Transaction, 0, len(records))
	for _, r := range records {
		if q.Matches(r.Date) {
			transactions = append(transactions, transactionFromRecord(r))
		}
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	if q.Limit > 0 && len(transactions) > q.Limit {
		transactions = transactions[:q.Limit]
	}
	return transactions, nil
}

func (b *LocalBackend) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	b.mu.Lock()
	records := b.loadTransactions(ctx)
	b.mu.Unlock()

	for _, r := range records {
		if r.ID == id {
			tx := transactionFromRecord(r)
			return &tx, nil
		}
	}
	return nil, models.ErrTransactionNotFound
}

func (b *LocalBackend) SaveTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	b.mu.Lock()
	records, replaced := upsertByID(b.loadTransactions(ctx), transactionToRecord(tx), transactionRecordID)
	localstore.Write(ctx, b.adapter, localstore.Transactions, records)
	b.mu.Unlock()

	if replaced {
		log.Printf("[local] updated existing transaction %s", tx.ID)
	} else {
		log.Printf("[local] added new transaction %s", tx.ID)
	}
	return &tx, nil
}

// RemoveDuplicateTransactions drops repeated transaction IDs from the stored
// collection and returns how many records were removed.
func (b *LocalBackend) RemoveDuplicateTransactions(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := localstore.Read[localstore.TransactionRecord](ctx, b.adapter, localstore.Transactions)
	unique, removed := dedupByID(res.Records, transactionRecordID)
	if removed > 0 {
		localstore.Write(ctx, b.adapter, localstore.Transactions, unique)
	}
	return removed
}

// ReplaceRaw stores an already encoded collection as is.
func (b *LocalBackend) ReplaceRaw(ctx context.Context, c localstore.Collection, raw json.RawMessage) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adapter.WriteRaw(ctx, c, raw)
}

// Clear deletes both local collections.
func (b *LocalBackend) Clear(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adapter.Clear(ctx, localstore.Products, localstore.Transactions)
}

// loadProducts and loadTransactions expect b.mu to be held.
func (b *LocalBackend) loadProducts(ctx context.Context) []localstore.ProductRecord {
	res := localstore.Read[localstore.ProductRecord](ctx, b.adapter, localstore.Products)
	if res.State == localstore.Missing && b.seed {
		records := make([]localstore.ProductRecord, len(DefaultProducts))
		for i, p := range DefaultProducts {
			records[i] = productToRecord(p)
		}
		localstore.Write(ctx, b.adapter, localstore.Products, records)
		return records
	}
	return res.Records
}

// loadTransactions reads the transaction collection, dropping duplicate IDs
// and persisting the cleaned collection when any were found.
func (b *LocalBackend) loadTransactions(ctx context.Context) []localstore.TransactionRecord {
	res := localstore.Read[localstore.TransactionRecord](ctx, b.adapter, localstore.Transactions)
	unique, removed := dedupByID(res.Records, transactionRecordID)
	if removed > 0 {
		log.Printf("[local] WARN: removed %d duplicate transaction(s)", removed)
		localstore.Write(ctx, b.adapter, localstore.Transactions, unique)
	}
	return unique
}

func productRecordID(r localstore.ProductRecord) string { return r.ID }

func transactionRecordID(r localstore.TransactionRecord) string { return r.ID }
