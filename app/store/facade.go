// Package store routes every persistence operation to exactly one backend.
// When the remote backend is configured it is used; reads that fail remotely
// fall back to the local backend, writes that fail remotely are reported.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotikasir/bakery-pos/app/pos"
	"github.com/rotikasir/bakery-pos/models"
)

const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

type Options struct {
	// RemoteEnabled selects the remote backend for every call.
	RemoteEnabled bool
	// MirrorToLocal copies every successful remote write into the local backend.
	MirrorToLocal bool
	// StrictPaymentMethods rejects unknown payment methods at checkout.
	StrictPaymentMethods bool
	Now                  func() time.Time
}

type Facade struct {
	local  Backend
	remote Backend
	opts   Options
}

// NewFacade builds a facade over both backends. remote may be nil when
// opts.RemoteEnabled is false.
func NewFacade(local, remote Backend, opts Options) *Facade {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if remote == nil {
		opts.RemoteEnabled = false
	}
	return &Facade{
		local:  local,
		remote: remote,
		opts:   opts,
	}
}

// Mode names the backend currently serving calls.
func (f *Facade) Mode() string {
	if f.opts.RemoteEnabled {
		return ModeRemote
	}
	return ModeLocal
}

// --- Products ---

func (f *Facade) ListProducts(ctx context.Context) ([]models.Product, error) {
	return read(f, "list products", func(b Backend) ([]models.Product, error) {
		return b.ListProducts(ctx)
	})
}

func (f *Facade) CreateProduct(ctx context.Context, np models.NewProduct) (*models.Product, error) {
	if err := np.Validate(); err != nil {
		return nil, err
	}
	now := f.opts.Now()
	product := models.Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(np.Name),
		Price:     np.Price,
		Stock:     np.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return write(f, "create product",
		func(b Backend) (*models.Product, error) {
			return b.SaveProduct(ctx, product)
		},
		func(local Backend, saved *models.Product) error {
			_, err := local.SaveProduct(ctx, *saved)
			return err
		})
}

func (f *Facade) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	return write(f, "update product",
		func(b Backend) (*models.Product, error) {
			return b.UpdateProduct(ctx, id, patch)
		},
		func(local Backend, updated *models.Product) error {
			_, err := local.SaveProduct(ctx, *updated)
			return err
		})
}

func (f *Facade) DeleteProduct(ctx context.Context, id string) error {
	_, err := write(f, "delete product",
		func(b Backend) (struct{}, error) {
			return struct{}{}, b.DeleteProduct(ctx, id)
		},
		func(local Backend, _ struct{}) error {
			err := local.DeleteProduct(ctx, id)
			if errors.Is(err, models.ErrProductNotFound) {
				return nil
			}
			return err
		})
	return err
}

// --- Transactions ---

// ListTransactions returns transactions newest first; limit <= 0 returns all.
func (f *Facade) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return f.queryTransactions(ctx, models.TransactionQuery{Limit: limit})
}

// TransactionsBetween returns transactions created within [start, end]. A
// zero end means now.
func (f *Facade) TransactionsBetween(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	if end.IsZero() {
		end = f.opts.Now()
	}
	return f.queryTransactions(ctx, models.TransactionQuery{From: start, To: end.Add(time.Nanosecond)})
}

func (f *Facade) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return read(f, "get transaction", func(b Backend) (*models.Transaction, error) {
		return b.GetTransaction(ctx, id)
	})
}

// SaveTransaction stores tx, replacing any transaction with the same ID.
// Invariant violations are rejected before anything is written.
func (f *Facade) SaveTransaction(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return write(f, "save transaction",
		func(b Backend) (*models.Transaction, error) {
			return b.SaveTransaction(ctx, tx)
		},
		func(local Backend, saved *models.Transaction) error {
			_, err := local.SaveTransaction(ctx, *saved)
			return err
		})
}

// Checkout turns the cart into a transaction and stores it. Payment problems
// are reported before any write happens.
func (f *Facade) Checkout(ctx context.Context, cart *pos.Cart, payment pos.Payment) (*models.Transaction, error) {
	payment.Strict = payment.Strict || f.opts.StrictPaymentMethods
	tx, err := pos.Checkout(cart, payment, f.opts.Now())
	if err != nil {
		return nil, err
	}
	return f.SaveTransaction(ctx, tx)
}

// --- Aggregates ---

// TodayStats totals the transactions created on the current local calendar day.
func (f *Facade) TodayStats(ctx context.Context) (pos.Stats, error) {
	now := f.opts.Now()
	start, end := pos.DayBounds(now)
	transactions, err := f.queryTransactions(ctx, models.TransactionQuery{From: start, To: end})
	if err != nil {
		return pos.Stats{}, err
	}
	return pos.TodayStats(transactions, now), nil
}

// SearchTransactions applies the history filter to all transactions, newest
// first, keeping at most limit results when limit > 0.
func (f *Facade) SearchTransactions(ctx context.Context, filter pos.HistoryFilter, limit int) ([]models.Transaction, error) {
	transactions, err := f.queryTransactions(ctx, models.TransactionQuery{})
	if err != nil {
		return nil, err
	}
	matched := pos.FilterHistory(transactions, filter)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *Facade) queryTransactions(ctx context.Context, q models.TransactionQuery) ([]models.Transaction, error) {
	return read(f, "list transactions", func(b Backend) ([]models.Transaction, error) {
		return b.ListTransactions(ctx, q)
	})
}

// --- Routing ---

// read runs op against the selected backend. A remote failure other than
// not-found is logged and the local backend answers instead.
func read[T any](f *Facade, op string, do func(Backend) (T, error)) (T, error) {
	if !f.opts.RemoteEnabled {
		return do(f.local)
	}
	v, err := do(f.remote)
	if err == nil || isNotFound(err) {
		return v, err
	}
	log.Printf("[store] WARN: remote %s failed, falling back to local: %v", op, err)
	return do(f.local)
}

// write runs op against the selected backend only. A remote failure is
// returned wrapped in ErrRemoteFailed; it is never redirected to local.
func write[T any](f *Facade, op string, do func(Backend) (T, error), mirror func(Backend, T) error) (T, error) {
	if !f.opts.RemoteEnabled {
		return do(f.local)
	}
	v, err := do(f.remote)
	if err != nil {
		if isNotFound(err) {
			return v, err
		}
		log.Printf("[store] remote %s failed: %v", op, err)
		var zero T
		return zero, fmt.Errorf("%w: %s: %w", ErrRemoteFailed, op, err)
	}
	if f.opts.MirrorToLocal && mirror != nil {
		if err := mirror(f.local, v); err != nil {
			log.Printf("[store] WARN: mirroring %s to local failed: %v", op, err)
		}
	}
	return v, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrProductNotFound) || errors.Is(err, models.ErrTransactionNotFound)
}
