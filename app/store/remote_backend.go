package store

import (
	"context"
	"errors"
	"time"

	"github.com/rotikasir/bakery-pos/app/remote"
	"github.com/rotikasir/bakery-pos/models"
)

// RemoteBackend adapts the relational client to the Backend interface.
type RemoteBackend struct {
	client *remote.Client
	now    func() time.Time
}

func NewRemoteBackend(client *remote.Client) *RemoteBackend {
	return &RemoteBackend{
		client: client,
		now:    time.Now,
	}
}

// Available reports whether the remote client is configured.
func (b *RemoteBackend) Available() bool {
	return b.client.Available()
}

func (b *RemoteBackend) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := b.client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, len(rows))
	for i, r := range rows {
		products[i] = productFromRow(r)
	}
	return products, nil
}

func (b *RemoteBackend) SaveProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	now := b.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	row := productToRow(p)
	if err := b.client.UpsertProduct(ctx, row); err != nil {
		return nil, err
	}
	saved := productFromRow(*row)
	return &saved, nil
}

func (b *RemoteBackend) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	fields := map[string]any{"updated_at": b.now()}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Stock != nil {
		fields["stock"] = *patch.Stock
	}

	row, err := b.client.UpdateProduct(ctx, id, fields)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	updated := productFromRow(*row)
	return &updated, nil
}

func (b *RemoteBackend) DeleteProduct(ctx context.Context, id string) error {
	err := b.client.DeleteProduct(ctx, id)
	if errors.Is(err, remote.ErrNotFound) {
		return models.ErrProductNotFound
	}
	return err
}

func (b *RemoteBackend) ListTransactions(ctx context.Context, q models.TransactionQuery) ([]models.Transaction, error) {
	rows, err := b.client.SelectTransactions(ctx, remote.TransactionFilter{
		From:  q.From,
		To:    q.To,
		Limit: q.Limit,
	})
	if err != nil {
		return nil, err
	}
	transactions := make([]models.Transaction, len(rows))
	for i, r := range rows {
		transactions[i] = transactionFromRow(r)
	}
	return transactions, nil
}

func (b *RemoteBackend) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	row, err := b.client.GetTransaction(ctx, id)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	tx := transactionFromRow(*row)
	return &tx, nil
}

func (b *RemoteBackend) SaveTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	row := transactionToRow(tx)
	if err := b.client.UpsertTransaction(ctx, row); err != nil {
		return nil, err
	}
	saved := transactionFromRow(*row)
	return &saved, nil
}
