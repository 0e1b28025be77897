package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotikasir/bakery-pos/app/api"
	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock *int    `json:"stock,omitempty"`
}

type ProductProvider interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, np models.NewProduct) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Pagination is optional; without limit the whole catalog is returned
	offset := 0
	limit := 0

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	var priceFilter *decimal.Decimal
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := decimal.NewFromString(priceStr); err == nil {
			priceFilter = &val
		}
	}

	res, err := h.repo.ListProducts(r.Context())
	if err != nil {
		api.StoreError(w, err, "Failed to retrieve products")
		return
	}

	products := make([]Product, 0, len(res))
	for _, p := range res {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if priceFilter != nil && !p.Price.LessThan(*priceFilter) {
			continue
		}
		products = append(products, toProduct(p))
	}

	total := len(products)
	if offset > total {
		offset = total
	}
	products = products[offset:]
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}

	api.OKResponse(w, Response{
		Total:    total,
		Products: products,
	})
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
		Stock *int            `json:"stock"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.repo.CreateProduct(r.Context(), models.NewProduct{
		Name:  input.Name,
		Price: input.Price,
		Stock: input.Stock,
	})
	if err != nil {
		api.StoreError(w, err, "Failed to create product")
		return
	}

	api.JSONResponse(w, http.StatusCreated, toProduct(*product))
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input struct {
		Name  *string          `json:"name"`
		Price *decimal.Decimal `json:"price"`
		Stock *int             `json:"stock"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.repo.UpdateProduct(r.Context(), id, models.ProductPatch{
		Name:  input.Name,
		Price: input.Price,
		Stock: input.Stock,
	})
	if err != nil {
		api.StoreError(w, err, "Failed to update product")
		return
	}

	api.OKResponse(w, toProduct(*product))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		api.StoreError(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toProduct(p models.Product) Product {
	return Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.InexactFloat64(),
		Stock: p.Stock,
	}
}
