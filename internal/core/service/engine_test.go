package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MikeRez0/ypshop/internal/adapter/storage/memory"
	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/service"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type engine struct {
	repo *memory.Repository
	svc  *service.Service
}

func newEngine(t *testing.T, products []domain.Product, customers []domain.Customer, promos []domain.PromoCode) *engine {
	t.Helper()
	repo, err := memory.NewRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Load(context.Background(), products, customers, promos))

	svc, err := service.NewService(repo, nil, domain.DefaultPolicy(), zap.NewNop())
	require.NoError(t, err)
	return &engine{repo: repo, svc: svc}
}

func (e *engine) stock(t *testing.T, id uint64) int64 {
	t.Helper()
	products, err := e.svc.ListProducts(context.Background())
	require.NoError(t, err)
	for _, p := range products {
		if p.ID == id {
			return p.Stock
		}
	}
	t.Fatalf("product %d not listed", id)
	return 0
}

func (e *engine) customer(t *testing.T, id uint64) *domain.Customer {
	t.Helper()
	c, err := e.svc.GetCustomer(context.Background(), id)
	require.NoError(t, err)
	return c
}

func singleProduct(stock int64) []domain.Product {
	return []domain.Product{{ID: 1, Name: "P", Price: decimal.MustParse("20.00"), Stock: stock}}
}

func bronzeCustomer() []domain.Customer {
	return []domain.Customer{{ID: 1, Name: "Alice", Tier: domain.TierBronze}}
}

func TestEngine_PlaceAndRefund(t *testing.T) {
	e := newEngine(t, singleProduct(5), bronzeCustomer(), nil)
	ctx := context.Background()

	order, err := e.svc.PlaceOrder(ctx, 1, []domain.LineRequest{{ProductID: 1, Quantity: 3}}, "")
	require.NoError(t, err)
	assert.Equal(t, "60.00", order.Subtotal.String())
	assert.Equal(t, "0.00", order.Discount.String())
	assert.Equal(t, "60.00", order.Total.String())
	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Equal(t, int64(2), e.stock(t, 1))
	assert.Equal(t, int64(60), e.customer(t, 1).LoyaltyPoints)

	refund, err := e.svc.Refund(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.00", refund.Amount.String())
	assert.Equal(t, int64(60), refund.PointsReversed)
	assert.Equal(t, int64(5), e.stock(t, 1))
	assert.Equal(t, int64(0), e.customer(t, 1).LoyaltyPoints)

	stored, err := e.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, stored.Status)
	assert.NotNil(t, stored.RefundedAt)

	_, err = e.svc.Refund(ctx, order.ID)
	assert.Equal(t, &domain.AlreadyRefundedError{OrderID: order.ID}, err)
	assert.Equal(t, int64(5), e.stock(t, 1))
	assert.Equal(t, int64(0), e.customer(t, 1).LoyaltyPoints)
}

func TestEngine_OutOfStockLeavesNoTrace(t *testing.T) {
	e := newEngine(t, singleProduct(5), bronzeCustomer(), nil)
	ctx := context.Background()

	_, err := e.svc.PlaceOrder(ctx, 1, []domain.LineRequest{{ProductID: 1, Quantity: 6}}, "")
	var oos *domain.OutOfStockError
	require.True(t, errors.As(err, &oos))
	assert.Equal(t, uint64(1), oos.ProductID)
	assert.Equal(t, int64(6), oos.Requested)
	assert.Equal(t, int64(5), oos.Available)

	assert.Equal(t, int64(5), e.stock(t, 1))
	orders, err := e.svc.ListOrders(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestEngine_InvalidPromoRollsBack(t *testing.T) {
	e := newEngine(t, singleProduct(5), bronzeCustomer(), nil)

	_, err := e.svc.PlaceOrder(context.Background(), 1,
		[]domain.LineRequest{{ProductID: 1, Quantity: 1}}, "BOGUS")
	assert.ErrorIs(t, err, domain.ErrInvalidPromo)
	assert.Equal(t, int64(5), e.stock(t, 1))
	assert.Equal(t, int64(0), e.customer(t, 1).LoyaltyPoints)
}

func TestEngine_TierUpgradeAppliesToNextOrder(t *testing.T) {
	customers := []domain.Customer{{ID: 1, Name: "Bob", LoyaltyPoints: 450, Tier: domain.TierBronze}}
	e := newEngine(t, singleProduct(10), customers, nil)
	ctx := context.Background()
	line := []domain.LineRequest{{ProductID: 1, Quantity: 3}}

	_, err := e.svc.PlaceOrder(ctx, 1, line, "")
	require.NoError(t, err)
	c := e.customer(t, 1)
	assert.Equal(t, int64(510), c.LoyaltyPoints)
	assert.Equal(t, domain.TierSilver, c.Tier)

	second, err := e.svc.PlaceOrder(ctx, 1, line, "")
	require.NoError(t, err)
	assert.Equal(t, "3.00", second.Discount.String())
	assert.Equal(t, "57.00", second.Total.String())
	assert.Equal(t, int64(567), e.customer(t, 1).LoyaltyPoints)
}

func TestEngine_ConcurrentOrdersNeverOversell(t *testing.T) {
	e := newEngine(t, singleProduct(5), bronzeCustomer(), nil)
	ctx := context.Background()

	const buyers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.PlaceOrder(ctx, 1, []domain.LineRequest{{ProductID: 1, Quantity: 1}}, "")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				placed++
			} else if errors.Is(err, domain.ErrOutOfStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, buyers-5, rejected)
	assert.Equal(t, int64(0), e.stock(t, 1))
}

func TestEngine_RefundIgnoresLaterPriceChange(t *testing.T) {
	e := newEngine(t, singleProduct(5), bronzeCustomer(), nil)
	ctx := context.Background()

	order, err := e.svc.PlaceOrder(ctx, 1, []domain.LineRequest{{ProductID: 1, Quantity: 3}}, "")
	require.NoError(t, err)
	earned := e.customer(t, 1).LoyaltyPoints
	require.Equal(t, int64(60), earned)

	// reprice the catalog entry, keeping its current stock
	require.NoError(t, e.repo.Load(ctx, []domain.Product{{
		ID: 1, Name: "P", Price: decimal.MustParse("35.00"), Stock: e.stock(t, 1),
	}}, nil, nil))

	refund, err := e.svc.Refund(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, refund.Amount)
	assert.Equal(t, "60.00", refund.Amount.String())
	assert.Equal(t, earned, refund.PointsReversed)
	assert.Equal(t, int64(0), e.customer(t, 1).LoyaltyPoints)

	stored, err := e.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "20.00", stored.Items[0].UnitPrice.String())
	assert.Equal(t, "60.00", stored.Total.String())
}
