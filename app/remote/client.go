// Package remote is the relational backend reached over the network. An
// unconfigured Client is a stub: every operation fails with ErrNotConfigured
// without touching the network.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotConfigured is returned by every operation of a stub client.
	ErrNotConfigured = errors.New("remote backend not configured")
	// ErrNotFound is returned when a keyed row does not exist.
	ErrNotFound = errors.New("remote record not found")
)

// Config holds the remote connection settings. Endpoint is a postgres URL
// without password; Credential is the password.
type Config struct {
	Endpoint        string
	Credential      string
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Configured reports whether both endpoint and credential are set.
func (c Config) Configured() bool {
	return c.Endpoint != "" && c.Credential != ""
}

// DSN merges the credential into the endpoint and converts it to a
// key/value connection string.
func (c Config) DSN() (string, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid remote endpoint: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid remote endpoint: unsupported scheme %q", u.Scheme)
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.Credential)

	dsn, err := pq.ParseURL(u.String())
	if err != nil {
		return "", fmt.Errorf("invalid remote endpoint: %w", err)
	}
	return dsn, nil
}

// TransactionFilter restricts SelectTransactions. Zero times leave that side
// open; To is exclusive. Limit <= 0 means no limit.
type TransactionFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

type Client struct {
	db      *gorm.DB
	breaker *gobreaker.CircuitBreaker[any]
}

// New returns a stub client when cfg is not configured. Opening the pool
// does not contact the server.
func New(cfg Config) (*Client, error) {
	if !cfg.Configured() {
		return &Client{}, nil
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}
	return NewWithDB(db, cfg), nil
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *gorm.DB, cfg Config) *Client {
	c := &Client{db: db}
	if cfg.BreakerFailures > 0 {
		c.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:    "remote",
			Timeout: cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("[remote] breaker %s: %s -> %s", name, from, to)
			},
		})
	}
	return c
}

// Available reports whether the client talks to a real backend.
func (c *Client) Available() bool {
	return c.db != nil
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) ListProducts(ctx context.Context) ([]ProductRow, error) {
	var products []ProductRow
	err := c.run(ctx, func(db *gorm.DB) error {
		return db.Order("name").Find(&products).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpsertProduct inserts the row or overwrites the row with the same ID.
func (c *Client) UpsertProduct(ctx context.Context, row *ProductRow) error {
	err := c.run(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "stock", "updated_at"}),
		}).Create(row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// UpdateProduct applies fields to the product and returns the stored row.
func (c *Client) UpdateProduct(ctx context.Context, id string, fields map[string]any) (*ProductRow, error) {
	var product ProductRow
	err := c.run(ctx, func(db *gorm.DB) error {
		if len(fields) > 0 {
			res := db.Model(&ProductRow{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		if err := db.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	err := c.run(ctx, func(db *gorm.DB) error {
		res := db.Delete(&ProductRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// SelectTransactions returns transactions newest first, with items in sale order.
func (c *Client) SelectTransactions(ctx context.Context, filter TransactionFilter) ([]TransactionRow, error) {
	var transactions []TransactionRow
	err := c.run(ctx, func(db *gorm.DB) error {
		query := db.Preload("TransactionItems", orderItems).Order("created_at DESC")
		if !filter.From.IsZero() {
			query = query.Where("created_at >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			query = query.Where("created_at < ?", filter.To)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		return query.Find(&transactions).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	return transactions, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*TransactionRow, error) {
	var transaction TransactionRow
	err := c.run(ctx, func(db *gorm.DB) error {
		err := db.Preload("TransactionItems", orderItems).First(&transaction, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// UpsertTransaction stores the transaction and replaces all of its items in
// one database transaction.
func (c *Client) UpsertTransaction(ctx context.Context, row *TransactionRow) error {
	err := c.run(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			header := *row
			header.TransactionItems = nil
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&header).Error; err != nil {
				return err
			}
			if err := tx.Where("transaction_id = ?", row.ID).Delete(&TransactionItemRow{}).Error; err != nil {
				return err
			}
			if len(row.TransactionItems) == 0 {
				return nil
			}
			return tx.Create(&row.TransactionItems).Error
		})
	})
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, fn func(db *gorm.DB) error) error {
	if c.db == nil {
		return ErrNotConfigured
	}
	db := c.db.WithContext(ctx)
	if c.breaker == nil {
		return fn(db)
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, fn(db)
	})
	return err
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
