package store

import (
	"context"
	"errors"

	"github.com/rotikasir/bakery-pos/models"
)

// ErrRemoteFailed wraps a remote backend failure surfaced to the caller.
var ErrRemoteFailed = errors.New("remote backend operation failed")

// Backend is one storage system able to persist products and transactions.
// Implementations return canonical models; callers never see backend shapes.
//
//go:generate mockgen -destination=mocks/mock_backend.go -source=backend.go Backend
type Backend interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	// SaveProduct stores p under p.ID, replacing any product with that ID.
	SaveProduct(ctx context.Context, p models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// ListTransactions returns matching transactions newest first.
	ListTransactions(ctx context.Context, q models.TransactionQuery) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// SaveTransaction upserts tx by ID: an existing record is fully replaced.
	SaveTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
}
