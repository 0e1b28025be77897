package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rotikasir/bakery-pos/app/localstore"
	"github.com/rotikasir/bakery-pos/app/pos"
	"github.com/rotikasir/bakery-pos/app/remote"
	"github.com/rotikasir/bakery-pos/app/store"
	mock_store "github.com/rotikasir/bakery-pos/app/store/mocks"
	"github.com/rotikasir/bakery-pos/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errNetwork = errors.New("dial tcp: connection refused")
	fixedNow   = time.Date(2025, 5, 17, 14, 30, 0, 0, time.UTC)
)

func clock() time.Time { return fixedNow }

func newLocalBackend(t *testing.T) *store.LocalBackend {
	files, err := localstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store.NewLocalBackend(localstore.NewAdapter(files), false)
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func validTransaction(id string, at time.Time) models.Transaction {
	return models.Transaction{
		ID:        id,
		Number:    models.TransactionNumber(at),
		CreatedAt: at,
		Items: []models.TransactionItem{
			{ProductID: "5", ProductName: "Donat Gula", Price: price(8000), Quantity: 3, Subtotal: price(24000)},
		},
		Total:         price(24000),
		PaymentMethod: models.PaymentQRIS,
	}
}

// --- Local mode ---

func TestFacade_LocalModeNeverTouchesRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteBackend := mock_store.NewMockBackend(ctrl) // no expectations: any call fails the test

	f := store.NewFacade(newLocalBackend(t), remoteBackend, store.Options{Now: clock})
	ctx := context.Background()

	assert.Equal(t, store.ModeLocal, f.Mode())

	created, err := f.CreateProduct(ctx, models.NewProduct{Name: "  Roti Sobek ", Price: price(14000)})
	require.NoError(t, err)
	assert.Equal(t, "Roti Sobek", created.Name)
	assert.NotEmpty(t, created.ID)

	_, err = f.SaveTransaction(ctx, validTransaction("1", fixedNow))
	require.NoError(t, err)

	products, err := f.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	transactions, err := f.ListTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestFacade_ConcurrentLocalSavesKeepEveryTransaction(t *testing.T) {
	f := store.NewFacade(newLocalBackend(t), nil, store.Options{Now: clock})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.SaveTransaction(ctx, validTransaction(fmt.Sprintf("tx-%d", i), fixedNow.Add(time.Duration(i)*time.Second)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	transactions, err := f.ListTransactions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, transactions, 20)
	seen := make(map[string]bool)
	for _, tx := range transactions {
		seen[tx.ID] = true
	}
	for i := 0; i < 20; i++ {
		assert.True(t, seen[fmt.Sprintf("tx-%d", i)], "tx-%d missing", i)
	}
}

func TestFacade_UnconfiguredRemoteClientStaysLocal(t *testing.T) {
	client, err := remote.New(remote.Config{Endpoint: "postgres://db.example:5432/pos"})
	require.NoError(t, err)
	rb := store.NewRemoteBackend(client)
	require.False(t, rb.Available())

	f := store.NewFacade(newLocalBackend(t), rb, store.Options{RemoteEnabled: rb.Available(), Now: clock})

	_, err = f.SaveTransaction(context.Background(), validTransaction("1", fixedNow))
	require.NoError(t, err)
	assert.Equal(t, store.ModeLocal, f.Mode())
}

func TestFacade_NilRemoteDisablesRemote(t *testing.T) {
	f := store.NewFacade(newLocalBackend(t), nil, store.Options{RemoteEnabled: true})
	assert.Equal(t, store.ModeLocal, f.Mode())
}

// --- Remote mode ---

func TestFacade_RemoteReadFallsBackToLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteBackend := mock_store.NewMockBackend(ctrl)
	local := newLocalBackend(t)
	ctx := context.Background()
	_, err := local.SaveProduct(ctx, models.Product{ID: "1", Name: "Roti Tawar", Price: price(12000)})
	require.NoError(t, err)

	remoteBackend.EXPECT().ListProducts(gomock.Any()).Return(nil, errNetwork)

	f := store.NewFacade(local, remoteBackend, store.Options{RemoteEnabled: true, Now: clock})
	products, err := f.ListProducts(ctx)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Roti Tawar", products[0].Name)
}

func TestFacade_RemoteReadSuccessIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteBackend := mock_store.NewMockBackend(ctrl)
	want := []models.Transaction{validTransaction("9", fixedNow)}

	remoteBackend.EXPECT().
		ListTransactions(gomock.Any(), models.TransactionQuery{Limit: 5}).
		Return(want, nil)

	f := store.NewFacade(newLocalBackend(t), remoteBackend, store.Options{RemoteEnabled: true, Now: clock})
	got, err := f.ListTransactions(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, store.ModeRemote, f.Mode())
}

func TestFacade_RemoteNotFoundDoesNotFallBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteBackend := mock_store.NewMockBackend(ctrl)
	local := newLocalBackend(t)
	ctx := context.Background()
	_, err := local.SaveTransaction(ctx, validTransaction("42", fixedNow))
	require.NoError(t, err)

	remoteBackend.EXPECT().GetTransaction(gomock.Any(), "42").Return(nil, models.ErrTransactionNotFound)

	f := store.NewFacade(local, remoteBackend, store.Options{RemoteEnabled: true, Now: clock})
	_, err = f.GetTransaction(ctx, "42")

	assert.ErrorIs(t, err, models.ErrTransactionNotFound)
}

func TestFacade_RemoteWriteFailureIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteBackend := mock_store.NewMockBackend(ctrl)
	local := newLocalBackend(t)
	ctx := context.Background()

	remoteBackend.EXPECT().SaveTransaction(gomock.Any(), gomock.Any()).Return(nil, errNetwork)

	f := store.NewFacade(local, remoteBackend, store.Options{RemoteEnabled: true, MirrorToLocal: true, Now: clock})
	_, err := f.SaveTransaction(ctx, validTransaction("7", fixedNow))

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrRemoteFailed)
	assert.ErrorIs(t, err, errNetwork)

	stored, err := local.ListTransactions(ctx, models.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, stored, "failed remote write must not land locally")
}

func TestFacade_MirrorToLocal(t *testing.T) {
	testCases := []struct {
		name       string
		mirror     bool
		wantLocals int
	}{
		{name: "Mirror enabled", mirror: true, wantLocals: 1},
		{name: "Mirror disabled", mirror: false, wantLocals: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			remoteBackend := mock_store.NewMockBackend(ctrl)
			local := newLocalBackend(t)
			ctx := context.Background()

			remoteBackend.EXPECT().
				SaveTransaction(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, tx models.Transaction) (*models.Transaction, error) {
					return &tx, nil
				})

			f := store.NewFacade(local, remoteBackend, store.Options{RemoteEnabled: true, MirrorToLocal: tc.mirror, Now: clock})
			_, err := f.SaveTransaction(ctx, validTransaction("11", fixedNow))
			require.NoError(t, err)

			stored, err := local.ListTransactions(ctx, models.TransactionQuery{})
			require.NoError(t, err)
			assert.Len(t, stored, tc.wantLocals)
		})
	}
}

func TestFacade_DeleteMirrorIgnoresMissingLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteBackend := mock_store.NewMockBackend(ctrl)

	remoteBackend.EXPECT().DeleteProduct(gomock.Any(), "abc").Return(nil)

	f := store.NewFacade(newLocalBackend(t), remoteBackend, store.Options{RemoteEnabled: true, MirrorToLocal: true, Now: clock})
	assert.NoError(t, f.DeleteProduct(context.Background(), "abc"))
}

// --- Validation before write ---

func TestFacade_InvalidWritesNeverReachBackends(t *testing.T) {
	ctrl := gomock.NewController(t)
	remoteBackend := mock_store.NewMockBackend(ctrl)
	f := store.NewFacade(newLocalBackend(t), remoteBackend, store.Options{RemoteEnabled: true, Now: clock})
	ctx := context.Background()

	_, err := f.CreateProduct(ctx, models.NewProduct{Name: "   ", Price: price(1000)})
	assert.ErrorIs(t, err, models.ErrValidation)

	empty := ""
	_, err = f.UpdateProduct(ctx, "1", models.ProductPatch{Name: &empty})
	assert.ErrorIs(t, err, models.ErrValidation)

	bad := validTransaction("1", fixedNow)
	bad.Total = price(1)
	_, err = f.SaveTransaction(ctx, bad)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestFacade_CheckoutInsufficientCashWritesNothing(t *testing.T) {
	local := newLocalBackend(t)
	f := store.NewFacade(local, nil, store.Options{Now: clock})
	ctx := context.Background()

	cart := pos.NewCart()
	require.NoError(t, cart.Add(models.Product{ID: "1", Name: "Roti Tawar", Price: price(12000)}, 2))
	require.NoError(t, cart.Add(models.Product{ID: "4", Name: "Croissant", Price: price(25000)}, 1))

	cash := price(40000)
	_, err := f.Checkout(ctx, cart, pos.Payment{Method: models.PaymentCash, CashReceived: cash})
	assert.ErrorIs(t, err, models.ErrInsufficientPayment)

	stored, err := local.ListTransactions(ctx, models.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, stored)

	cash = price(50000)
	tx, err := f.Checkout(ctx, cart, pos.Payment{Method: models.PaymentCash, CashReceived: cash})
	require.NoError(t, err)
	assert.True(t, tx.Total.Equal(price(49000)))
	assert.True(t, tx.Change.Equal(price(1000)))

	stored, err = local.ListTransactions(ctx, models.TransactionQuery{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, tx.ID, stored[0].ID)
}

func TestFacade_CheckoutStrictPaymentMethods(t *testing.T) {
	f := store.NewFacade(newLocalBackend(t), nil, store.Options{StrictPaymentMethods: true, Now: clock})
	cart := pos.NewCart()
	require.NoError(t, cart.Add(models.Product{ID: "5", Name: "Donat Gula", Price: price(8000)}, 1))

	_, err := f.Checkout(context.Background(), cart, pos.Payment{Method: "voucher"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

// --- Aggregates ---

func TestFacade_TodayStatsAndSearch(t *testing.T) {
	local := newLocalBackend(t)
	f := store.NewFacade(local, nil, store.Options{Now: clock})
	ctx := context.Background()

	yesterday := validTransaction("100", fixedNow.AddDate(0, 0, -1))
	morning := validTransaction("200", fixedNow.Add(-5*time.Hour))
	noon := validTransaction("300", fixedNow.Add(-2*time.Hour))
	noon.Items = []models.TransactionItem{
		{ProductID: "4", ProductName: "Croissant", Price: price(25000), Quantity: 2, Subtotal: price(50000)},
	}
	noon.Total = price(50000)

	for _, tx := range []models.Transaction{yesterday, morning, noon} {
		_, err := f.SaveTransaction(ctx, tx)
		require.NoError(t, err)
	}

	stats, err := f.TodayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTransactions)
	assert.True(t, stats.TotalSales.Equal(price(74000)))

	found, err := f.SearchTransactions(ctx, pos.HistoryFilter{Query: "croiss"}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "300", found[0].ID)

	limited, err := f.SearchTransactions(ctx, pos.HistoryFilter{Query: "donat"}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "200", limited[0].ID)

	between, err := f.TransactionsBetween(ctx, fixedNow.Add(-6*time.Hour), time.Time{})
	require.NoError(t, err)
	assert.Len(t, between, 2)
}
