package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/resale-ledger/internal/application/recalc"
	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/domain/money"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/storage"
)

func newTestService(t *testing.T) (*InventoryService, *storage.MockRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := storage.NewMockRepository()
	svc := NewInventoryService(repo, recalc.NewService(repo, nil, logger), logger)

	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
	return svc, repo
}

func allocated(t *testing.T, repo *storage.MockRepository, spID string) []int64 {
	t.Helper()
	items, err := repo.ListItems(context.Background(), spID)
	require.NoError(t, err)
	out := make([]int64, len(items))
	for i, it := range items {
		require.NotNil(t, it.AllocatedCost, it.ID)
		out[i] = *it.AllocatedCost
	}
	return out
}

type failingRecalc struct{ err error }

func (f failingRecalc) Recalculate(context.Context, string) (*recalc.Result, error) {
	return nil, f.err
}

func TestInventoryService_FullTrip(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	session := &inventory.Session{Name: "Osaka run", TransportationCost: money.Ptr(900)}
	require.NoError(t, svc.CreateSession(ctx, session))
	assert.Equal(t, "id-01", session.ID)

	a := &inventory.StorePurchase{SessionID: session.ID, StoreName: "A", ProductAmount: money.Ptr(2000), ItemCount: 2}
	require.NoError(t, svc.CreateStorePurchase(ctx, a))
	assert.Equal(t, inventory.PriceInputBatch, a.PriceInputMode)

	b := &inventory.StorePurchase{
		SessionID:      session.ID,
		StoreName:      "B",
		ProductAmount:  money.Ptr(1000),
		ItemCount:      3,
		PriceInputMode: inventory.PriceInputIndividual,
	}
	require.NoError(t, svc.CreateStorePurchase(ctx, b))

	_, err := svc.BulkCreateItems(ctx, a.ID, 2, inventory.Item{Name: "Comic"})
	require.NoError(t, err)
	require.NoError(t, svc.CreateItem(ctx, &inventory.Item{StorePurchaseID: b.ID, Name: "Lamp", PurchaseCost: money.Ptr(100)}))
	require.NoError(t, svc.CreateItem(ctx, &inventory.Item{StorePurchaseID: b.ID, Name: "Vase", PurchaseCost: money.Ptr(900)}))

	// A: 2000 + 600 = 2600 / 2; B: 1000 + 300 = 1300 / 2 regardless of purchase cost
	assert.Equal(t, []int64{1300, 1300}, allocated(t, repo, a.ID))
	assert.Equal(t, []int64{650, 650}, allocated(t, repo, b.ID))

	// Raising the session fee flows down to every item.
	session.TransportationCost = money.Ptr(1800)
	require.NoError(t, svc.UpdateSession(ctx, session))
	assert.Equal(t, []int64{1600, 1600}, allocated(t, repo, a.ID))
	assert.Equal(t, []int64{800, 800}, allocated(t, repo, b.ID))

	// Shipping on B shifts the apportionment between the two stores.
	b.ShippingCost = money.Ptr(1000)
	require.NoError(t, svc.UpdateStorePurchase(ctx, b))
	// subtotals 2000/2000: each gets 900 of the common cost
	assert.Equal(t, []int64{1450, 1450}, allocated(t, repo, a.ID))
	assert.Equal(t, []int64{1450, 1450}, allocated(t, repo, b.ID))
}

func TestInventoryService_CreateSession_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.CreateSession(ctx, &inventory.Session{})
	assert.ErrorIs(t, err, inventory.ErrValidation)

	err = svc.CreateSession(ctx, &inventory.Session{Name: "x", AgencyFee: money.Ptr(-5)})
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestInventoryService_CreateStorePurchase_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.CreateStorePurchase(context.Background(), &inventory.StorePurchase{SessionID: "nope"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInventoryService_CreateStorePurchase_BadMode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))

	err := svc.CreateStorePurchase(ctx, &inventory.StorePurchase{SessionID: session.ID, PriceInputMode: "weighted"})
	assert.ErrorIs(t, err, inventory.ErrValidation)
}

func TestInventoryService_UpdateStorePurchase_KeepsSession(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))
	sp := &inventory.StorePurchase{SessionID: session.ID, StoreName: "A"}
	require.NoError(t, svc.CreateStorePurchase(ctx, sp))

	update := &inventory.StorePurchase{ID: sp.ID, SessionID: "elsewhere", StoreName: "A2"}
	require.NoError(t, svc.UpdateStorePurchase(ctx, update))

	got, err := repo.GetStorePurchase(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.SessionID)
	assert.Equal(t, "A2", got.StoreName)
	assert.Equal(t, inventory.PriceInputBatch, got.PriceInputMode)
}

func TestInventoryService_DeleteBlockedWhileInUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))
	sp := &inventory.StorePurchase{SessionID: session.ID, ProductAmount: money.Ptr(100)}
	require.NoError(t, svc.CreateStorePurchase(ctx, sp))
	item := &inventory.Item{StorePurchaseID: sp.ID, Name: "x"}
	require.NoError(t, svc.CreateItem(ctx, item))

	assert.ErrorIs(t, svc.DeleteSession(ctx, session.ID), inventory.ErrSessionInUse)
	assert.ErrorIs(t, svc.DeleteStorePurchase(ctx, sp.ID), inventory.ErrStorePurchaseInUse)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	require.NoError(t, svc.DeleteStorePurchase(ctx, sp.ID))
	require.NoError(t, svc.DeleteSession(ctx, session.ID))

	_, err := svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, session.ID), storage.ErrNotFound)
}

func TestInventoryService_DeleteItemRespreadsCost(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))
	sp := &inventory.StorePurchase{SessionID: session.ID, ProductAmount: money.Ptr(1000)}
	require.NoError(t, svc.CreateStorePurchase(ctx, sp))
	items, err := svc.BulkCreateItems(ctx, sp.ID, 3, inventory.Item{Name: "Plate"})
	require.NoError(t, err)
	assert.Equal(t, []int64{333, 333, 333}, allocated(t, repo, sp.ID))
	assert.Equal(t, "Plate #1", items[0].Name)

	require.NoError(t, svc.DeleteItem(ctx, items[0].ID))
	assert.Equal(t, []int64{500, 500}, allocated(t, repo, sp.ID))
}

func TestInventoryService_BulkCreateItems_Bounds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.BulkCreateItems(ctx, "sp", 0, inventory.Item{})
	assert.ErrorIs(t, err, inventory.ErrValidation)

	_, err = svc.BulkCreateItems(ctx, "sp", MaxBulkItems+1, inventory.Item{})
	assert.ErrorIs(t, err, inventory.ErrValidation)

	_, err = svc.BulkCreateItems(ctx, "sp", 1, inventory.Item{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInventoryService_UpdateItem_DoesNotRecalculate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))
	sp := &inventory.StorePurchase{SessionID: session.ID, ProductAmount: money.Ptr(600)}
	require.NoError(t, svc.CreateStorePurchase(ctx, sp))
	item := &inventory.Item{StorePurchaseID: sp.ID, Name: "x"}
	require.NoError(t, svc.CreateItem(ctx, item))

	txBefore := repo.AllocationTxCount
	update := &inventory.Item{ID: item.ID, Name: "renamed", Status: inventory.StatusListed, ListPrice: money.Ptr(1500)}
	require.NoError(t, svc.UpdateItem(ctx, update))
	assert.Equal(t, txBefore, repo.AllocationTxCount)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, inventory.StatusListed, got.Status)
	require.NotNil(t, got.AllocatedCost)
	assert.Equal(t, int64(600), *got.AllocatedCost)
}

func TestInventoryService_UpdateItem_KeepsSale(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))
	sp := &inventory.StorePurchase{SessionID: session.ID, ProductAmount: money.Ptr(600)}
	require.NoError(t, svc.CreateStorePurchase(ctx, sp))
	item := &inventory.Item{StorePurchaseID: sp.ID, Name: "x"}
	require.NoError(t, svc.CreateItem(ctx, item))
	_, err := svc.MarkSold(ctx, item.ID, 2000, time.Time{})
	require.NoError(t, err)

	txBefore := repo.AllocationTxCount
	require.NoError(t, svc.UpdateItem(ctx, &inventory.Item{ID: item.ID, Name: "renamed"}))
	assert.Equal(t, txBefore, repo.AllocationTxCount)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, inventory.StatusSold, got.Status)
	require.NotNil(t, got.SalePrice)
	assert.Equal(t, int64(2000), *got.SalePrice)
	require.NotNil(t, got.SoldAt)
	assert.True(t, fixed.Equal(*got.SoldAt))

	t.Run("relisting clears the sale", func(t *testing.T) {
		require.NoError(t, svc.UpdateItem(ctx, &inventory.Item{ID: item.ID, Name: "renamed", Status: inventory.StatusListed}))
		got, err := svc.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.StatusListed, got.Status)
		assert.Nil(t, got.SalePrice)
		assert.Nil(t, got.SoldAt)
	})
}

func TestInventoryService_MarkSoldAndProfit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))
	sp := &inventory.StorePurchase{SessionID: session.ID, ProductAmount: money.Ptr(800)}
	require.NoError(t, svc.CreateStorePurchase(ctx, sp))
	item := &inventory.Item{StorePurchaseID: sp.ID, Name: "Camera"}
	require.NoError(t, svc.CreateItem(ctx, item))

	_, ok, err := svc.ItemProfit(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	sold, err := svc.MarkSold(ctx, item.ID, 2000, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, inventory.StatusSold, sold.Status)
	require.NotNil(t, sold.SoldAt)
	assert.True(t, fixed.Equal(*sold.SoldAt))

	p, ok, err := svc.ItemProfit(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1200), p.Profit)
	assert.Equal(t, int64(15000), p.ROIBasisPoints)

	_, err = svc.MarkSold(ctx, item.ID, -1, time.Time{})
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestInventoryService_RecalcErrorSurfaces(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := storage.NewMockRepository()
	boom := errors.New("recalc down")
	svc := NewInventoryService(repo, failingRecalc{err: boom}, logger)
	ctx := context.Background()

	session := &inventory.Session{Name: "trip"}
	require.NoError(t, svc.CreateSession(ctx, session))

	err := svc.CreateStorePurchase(ctx, &inventory.StorePurchase{SessionID: session.ID})
	assert.ErrorIs(t, err, boom)
}
