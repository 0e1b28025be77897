package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// --- Mock Repo ---

type MockProductRepo struct {
	SourceProducts []models.Product
	Err            error

	// Fields to capture call arguments
	lastCreated models.NewProduct
	lastPatch   models.ProductPatch
	lastID      string
}

func (m *MockProductRepo) ListProducts(_ context.Context) ([]models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.SourceProducts, nil
}

func (m *MockProductRepo) CreateProduct(_ context.Context, np models.NewProduct) (*models.Product, error) {
	m.lastCreated = np
	if m.Err != nil {
		return nil, m.Err
	}
	if err := np.Validate(); err != nil {
		return nil, err
	}
	return &models.Product{ID: "new-id", Name: np.Name, Price: np.Price, Stock: np.Stock}, nil
}

func (m *MockProductRepo) UpdateProduct(_ context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	m.lastID = id
	m.lastPatch = patch
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.SourceProducts {
		if p.ID == id {
			updated := patch.Apply(p)
			return &updated, nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (m *MockProductRepo) DeleteProduct(_ context.Context, id string) error {
	m.lastID = id
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.SourceProducts {
		if p.ID == id {
			return nil
		}
	}
	return models.ErrProductNotFound
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	allMockProducts := []models.Product{
		{ID: "1", Name: "Roti Tawar", Price: decimal.NewFromInt(12000)},
		{ID: "2", Name: "Roti Coklat", Price: decimal.NewFromInt(15000)},
		{ID: "4", Name: "Croissant", Price: decimal.NewFromInt(25000)},
		{ID: "5", Name: "Donat Gula", Price: decimal.NewFromInt(8000)},
	}

	testCases := []struct {
		name               string
		query              string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		expectedTotal      int
		expectedIDs        []string
	}{
		{
			name:  "Whole catalog without pagination",
			query: "",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      4,
			expectedIDs:        []string{"1", "2", "4", "5"},
		},
		{
			name:  "Name search is case insensitive",
			query: "?q=ROTI",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      2,
			expectedIDs:        []string{"1", "2"},
		},
		{
			name:  "Price less than filter",
			query: "?price_lt=15000",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      2,
			expectedIDs:        []string{"1", "5"},
		},
		{
			name:  "Offset and limit",
			query: "?offset=1&limit=2",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      4,
			expectedIDs:        []string{"2", "4"},
		},
		{
			name:  "Limit below one is clamped",
			query: "?limit=0",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      4,
			expectedIDs:        []string{"1"},
		},
		{
			name:  "Offset past the end",
			query: "?offset=10",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts}
			},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      4,
			expectedIDs:        []string{},
		},
		{
			name:  "Empty catalog",
			query: "",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: []models.Product{}}
			},
			expectedStatusCode: http.StatusOK,
			expectedTotal:      0,
			expectedIDs:        []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo)
			req := httptest.NewRequest("GET", "/api/products"+tc.query, nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGet(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			var resp Response
			err := json.NewDecoder(rec.Body).Decode(&resp)
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, resp.Total)

			ids := make([]string, len(resp.Products))
			for i, p := range resp.Products {
				ids[i] = p.ID
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func TestHandleGet_PricesAreNumbers(t *testing.T) {
	stock := 12
	mockRepo := &MockProductRepo{SourceProducts: []models.Product{
		{ID: "3", Name: "Roti Keju", Price: decimal.RequireFromString("18000.50"), Stock: &stock},
	}}
	handler := NewCatalogHandler(mockRepo)
	rec := httptest.NewRecorder()

	handler.HandleGet(rec, httptest.NewRequest("GET", "/api/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1,"products":[{"id":"3","name":"Roti Keju","price":18000.5,"stock":12}]}`, rec.Body.String())
}

func TestHandleGet_RepositoryError(t *testing.T) {
	handler := NewCatalogHandler(&MockProductRepo{Err: errors.New("db connection lost")})
	rec := httptest.NewRecorder()

	handler.HandleGet(rec, httptest.NewRequest("GET", "/api/products", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var errResp map[string]string
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "Failed to retrieve products", errResp["error"])
}
