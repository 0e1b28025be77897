package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotikasir/bakery-pos/app/api"
	"github.com/rotikasir/bakery-pos/app/pos"
	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 50

type Item struct {
	ProductID   string  `json:"product_id,omitempty"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type Transaction struct {
	ID                string    `json:"id"`
	TransactionNumber string    `json:"transaction_number"`
	CreatedAt         time.Time `json:"created_at"`
	Items             []Item    `json:"items"`
	Total             float64   `json:"total"`
	PaymentMethod     string    `json:"payment_method"`
	CashReceived      *float64  `json:"cash_received,omitempty"`
	Change            *float64  `json:"change,omitempty"`
}

type HistoryResponse struct {
	Total        int           `json:"total"`
	Transactions []Transaction `json:"transactions"`
}

type StatsResponse struct {
	TotalSales        float64 `json:"total_sales"`
	TotalTransactions int     `json:"total_transactions"`
}

type SalesProvider interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	Checkout(ctx context.Context, cart *pos.Cart, payment pos.Payment) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	SearchTransactions(ctx context.Context, filter pos.HistoryFilter, limit int) ([]models.Transaction, error)
	TodayStats(ctx context.Context) (pos.Stats, error)
}

type SalesHandler struct {
	repo SalesProvider
	loc  *time.Location
}

// NewSalesHandler returns a handler that interprets date filters in loc.
func NewSalesHandler(r SalesProvider, loc *time.Location) *SalesHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SalesHandler{
		repo: r,
		loc:  loc,
	}
}

func (h *SalesHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Items []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		PaymentMethod string           `json:"payment_method"`
		CashReceived  *decimal.Decimal `json:"cash_received"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	products, err := h.repo.ListProducts(r.Context())
	if err != nil {
		api.StoreError(w, err, "Failed to load products")
		return
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart := pos.NewCart()
	for _, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			api.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown product %q", item.ProductID))
			return
		}
		if err := cart.Add(product, item.Quantity); err != nil {
			api.StoreError(w, err, "Failed to build cart")
			return
		}
	}

	payment := pos.Payment{Method: models.PaymentMethod(input.PaymentMethod)}
	if input.CashReceived != nil {
		payment.CashReceived = *input.CashReceived
	}

	tx, err := h.repo.Checkout(r.Context(), cart, payment)
	if err != nil {
		api.StoreError(w, err, "Failed to save transaction")
		return
	}

	api.JSONResponse(w, http.StatusCreated, toTransaction(*tx))
}

func (h *SalesHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	filter := pos.HistoryFilter{Query: r.URL.Query().Get("q")}

	if dStr := r.URL.Query().Get("date"); dStr != "" {
		date, err := time.ParseInLocation(time.DateOnly, dStr, h.loc)
		if err != nil {
			api.ErrorResponse(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		filter.Date = date
	}

	limit := defaultHistoryLimit
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			// zero or negative returns the whole history
			limit = l
		}
	}

	res, err := h.repo.SearchTransactions(r.Context(), filter, limit)
	if err != nil {
		api.StoreError(w, err, "Failed to retrieve transactions")
		return
	}

	transactions := make([]Transaction, len(res))
	for i, t := range res {
		transactions[i] = toTransaction(t)
	}
	api.OKResponse(w, HistoryResponse{
		Total:        len(transactions),
		Transactions: transactions,
	})
}

func (h *SalesHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	tx, err := h.repo.GetTransaction(r.Context(), id)
	if err != nil {
		api.StoreError(w, err, "Failed to retrieve transaction")
		return
	}

	api.OKResponse(w, toTransaction(*tx))
}

func (h *SalesHandler) HandleTodayStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.TodayStats(r.Context())
	if err != nil {
		api.StoreError(w, err, "Failed to compute stats")
		return
	}

	api.OKResponse(w, StatsResponse{
		TotalSales:        stats.TotalSales.InexactFloat64(),
		TotalTransactions: stats.TotalTransactions,
	})
}

func toTransaction(t models.Transaction) Transaction {
	items := make([]Item, len(t.Items))
	for i, it := range t.Items {
		items[i] = Item{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price.InexactFloat64(),
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal.InexactFloat64(),
		}
	}
	return Transaction{
		ID:                t.ID,
		TransactionNumber: t.Number,
		CreatedAt:         t.CreatedAt,
		Items:             items,
		Total:             t.Total.InexactFloat64(),
		PaymentMethod:     string(t.PaymentMethod),
		CashReceived:      floatPtr(t.CashReceived),
		Change:            floatPtr(t.Change),
	}
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
