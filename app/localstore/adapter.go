// Package localstore is the best-effort local persistence path. Reads never
// fail and writes never report failure; problems are logged and absorbed.
package localstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

// Collection names a local blob holding a JSON array of records.
type Collection string

const (
	Products     Collection = "products"
	Transactions Collection = "transactions"
)

// State describes what a read found in the underlying blob.
type State int

const (
	// Present means the blob existed and decoded.
	Present State = iota
	// Missing means no blob was stored under the collection name.
	Missing
	// Corrupt means the blob could not be read or decoded.
	Corrupt
)

func (s State) String() string {
	switch s {
	case Present:
		return "present"
	case Missing:
		return "missing"
	case Corrupt:
		return "corrupt"
	}
	return "unknown"
}

// Result is the outcome of reading a collection. Records is empty unless
// State is Present.
type Result[T any] struct {
	Records []T
	State   State
}

// ProductRecord is the local shape of a product.
type ProductRecord struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock *int    `json:"stock,omitempty"`
}

// TransactionRecord is the local shape of a transaction. It has no
// transaction number and its items carry no subtotal.
type TransactionRecord struct {
	ID            string       `json:"id"`
	Date          time.Time    `json:"date"`
	Items         []ItemRecord `json:"items"`
	Total         float64      `json:"total"`
	PaymentMethod string       `json:"paymentMethod"`
	CashReceived  *float64     `json:"cashReceived,omitempty"`
	Change        *float64     `json:"change,omitempty"`
}

type ItemRecord struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Adapter reads and writes named collections in a BlobStore.
type Adapter struct {
	blobs BlobStore
}

func NewAdapter(blobs BlobStore) *Adapter {
	return &Adapter{blobs: blobs}
}

// Read loads a collection. It never fails: an absent blob yields Missing and
// an unreadable or undecodable one yields Corrupt, both with no records.
func Read[T any](ctx context.Context, a *Adapter, c Collection) Result[T] {
	data, err := a.blobs.Get(ctx, string(c))
	if errors.Is(err, ErrBlobNotFound) {
		return Result[T]{State: Missing}
	}
	if err != nil {
		log.Printf("[local] WARN: failed to read %s: %v", c, err)
		return Result[T]{State: Corrupt}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("[local] WARN: discarding unparsable %s blob: %v", c, err)
		return Result[T]{State: Corrupt}
	}
	return Result[T]{Records: records, State: Present}
}

// Write replaces a collection. Failures are logged, not returned.
func Write[T any](ctx context.Context, a *Adapter, c Collection, records []T) {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		log.Printf("[local] WARN: failed to encode %s: %v", c, err)
		return
	}
	a.put(ctx, c, data)
}

// WriteRaw stores an already-encoded JSON array as the collection blob.
// It reports false when data is not a JSON array; storage failures are only logged.
func (a *Adapter) WriteRaw(ctx context.Context, c Collection, data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' || !json.Valid(trimmed) {
		return false
	}
	a.put(ctx, c, trimmed)
	return true
}

// Clear removes the given collections.
func (a *Adapter) Clear(ctx context.Context, collections ...Collection) {
	for _, c := range collections {
		if err := a.blobs.Delete(ctx, string(c)); err != nil {
			log.Printf("[local] WARN: failed to clear %s: %v", c, err)
		}
	}
}

func (a *Adapter) put(ctx context.Context, c Collection, data []byte) {
	if err := a.blobs.Put(ctx, string(c), data); err != nil {
		log.Printf("[local] WARN: failed to save %s: %v", c, err)
	}
}
