package http_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MikeRez0/ypshop/internal/adapter/config"
	handler "github.com/MikeRez0/ypshop/internal/adapter/handler/http"
	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/MikeRez0/ypshop/internal/core/port/mock"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, svc port.Service, cache port.IdempotencyCache) *handler.Router {
	t.Helper()
	logger := zap.NewNop()

	catalogHandler, err := handler.NewCatalogHandler(svc, logger)
	require.NoError(t, err)
	orderHandler, err := handler.NewOrderHandler(svc, logger)
	require.NoError(t, err)

	router, err := handler.NewRouter(&config.Cache{IdempotencyTTL: time.Hour}, cache,
		catalogHandler, orderHandler, logger)
	require.NoError(t, err)
	return router
}

func do(router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:         10,
		CustomerID: 1,
		Items:      []domain.OrderItem{{ProductID: 7, Quantity: 3, UnitPrice: decimal.MustParse("20")}},
		Subtotal:   decimal.MustParse("60.00"),
		Discount:   decimal.MustParse("6.00"),
		Total:      decimal.MustParse("54.00"),
		PromoCode:  "TEN",
		Status:     domain.OrderStatusPlaced,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRouter_PlaceOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	lines := []domain.LineRequest{{ProductID: 7, Quantity: 3}}
	body := `{"customer_id":1,"items":[{"product_id":7,"quantity":3}],"promo_code":"TEN"}`

	type placeOrderTest struct {
		name      string
		body      string
		mock      func(svc *mock.MockService)
		expStatus int
		expError  string
	}

	tests := []placeOrderTest{
		{
			name: "Created",
			body: body,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), lines, "TEN").Return(testOrder(), nil)
			},
			expStatus: http.StatusCreated,
		},
		{
			name:      "Missing items",
			body:      `{"customer_id":1,"items":[]}`,
			mock:      func(svc *mock.MockService) {},
			expStatus: http.StatusBadRequest,
			expError:  domain.ErrBadRequest.Error(),
		},
		{
			name:      "Zero quantity",
			body:      `{"customer_id":1,"items":[{"product_id":7,"quantity":0}]}`,
			mock:      func(svc *mock.MockService) {},
			expStatus: http.StatusBadRequest,
			expError:  domain.ErrBadRequest.Error(),
		},
		{
			name:      "Not json",
			body:      `customer=1`,
			mock:      func(svc *mock.MockService) {},
			expStatus: http.StatusBadRequest,
			expError:  domain.ErrBadRequest.Error(),
		},
		{
			name: "Out of stock",
			body: body,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), lines, "TEN").
					Return(nil, &domain.OutOfStockError{ProductID: 7, Name: "Widget", Requested: 3, Available: 1})
			},
			expStatus: http.StatusConflict,
			expError:  `insufficient stock for "Widget" (product 7): requested 3, available 1`,
		},
		{
			name: "Invalid promo",
			body: body,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), lines, "TEN").
					Return(nil, &domain.InvalidPromoError{Code: "TEN", Reason: domain.PromoReasonExpired})
			},
			expStatus: http.StatusUnprocessableEntity,
			expError:  `invalid promo code "TEN": expired`,
		},
		{
			name: "Customer not found",
			body: body,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), lines, "TEN").
					Return(nil, domain.NewNotFound(domain.EntityCustomer, 1))
			},
			expStatus: http.StatusNotFound,
			expError:  "customer 1 not found",
		},
		{
			name: "Unexpected error is hidden",
			body: body,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), lines, "TEN").
					Return(nil, errors.New("pq: relation does not exist"))
			},
			expStatus: http.StatusInternalServerError,
			expError:  domain.ErrInternal.Error(),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc := mock.NewMockService(mockCtrl)
			test.mock(svc)
			router := newTestRouter(t, svc, nil)

			w := do(router, http.MethodPost, "/api/orders", test.body, nil)

			assert.Equal(t, test.expStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if test.expError != "" {
				assert.JSONEq(t, `{"error":`+mustJSON(t, test.expError)+`}`, w.Body.String())
			}
		})
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestRouter_OrderResponse(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	svc := mock.NewMockService(mockCtrl)
	svc.EXPECT().GetOrder(gomock.Any(), uint64(10)).Return(testOrder(), nil)
	router := newTestRouter(t, svc, nil)

	w := do(router, http.MethodGet, "/api/orders/10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"id": 10,
		"customer_id": 1,
		"status": "PLACED",
		"subtotal": "60.00",
		"discount_amount": "6.00",
		"total": "54.00",
		"promo_code_used": "TEN",
		"created_at": "2026-03-01T12:00:00Z",
		"items": [{"product_id": 7, "quantity": 3, "price_at_purchase": "20.00"}]
	}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/orders/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ListOrders(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	svc := mock.NewMockService(mockCtrl)
	svc.EXPECT().ListOrders(gomock.Any(), uint64(0)).Return([]*domain.Order{testOrder()}, nil)
	svc.EXPECT().ListOrders(gomock.Any(), uint64(3)).Return([]*domain.Order{}, nil)
	router := newTestRouter(t, svc, nil)

	w := do(router, http.MethodGet, "/api/orders", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = do(router, http.MethodGet, "/api/orders?customer_id=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(router, http.MethodGet, "/api/orders?customer_id=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Refund(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	type refundTest struct {
		name      string
		body      string
		mock      func(svc *mock.MockService)
		expStatus int
		expBody   string
	}

	tests := []refundTest{
		{
			name: "Refunded",
			body: `{"order_id":10}`,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().Refund(gomock.Any(), uint64(10)).Return(&domain.Refund{
					OrderID:        10,
					Amount:         decimal.MustParse("54"),
					PointsReversed: 54,
					Status:         domain.OrderStatusRefunded,
				}, nil)
			},
			expStatus: http.StatusOK,
			expBody:   `{"order_id":10,"refund_amount":"54.00","points_reversed":54,"status":"REFUNDED"}`,
		},
		{
			name: "Already refunded",
			body: `{"order_id":10}`,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().Refund(gomock.Any(), uint64(10)).Return(nil, &domain.AlreadyRefundedError{OrderID: 10})
			},
			expStatus: http.StatusConflict,
			expBody:   `{"error":"order 10 already refunded"}`,
		},
		{
			name: "Unknown order",
			body: `{"order_id":11}`,
			mock: func(svc *mock.MockService) {
				svc.EXPECT().Refund(gomock.Any(), uint64(11)).Return(nil, domain.NewNotFound(domain.EntityOrder, 11))
			},
			expStatus: http.StatusNotFound,
			expBody:   `{"error":"order 11 not found"}`,
		},
		{
			name:      "Missing order id",
			body:      `{}`,
			mock:      func(svc *mock.MockService) {},
			expStatus: http.StatusBadRequest,
			expBody:   `{"error":"error parsing request"}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc := mock.NewMockService(mockCtrl)
			test.mock(svc)
			router := newTestRouter(t, svc, nil)

			w := do(router, http.MethodPost, "/api/refunds", test.body, nil)

			assert.Equal(t, test.expStatus, w.Code)
			assert.JSONEq(t, test.expBody, w.Body.String())
		})
	}
}

func TestRouter_Catalog(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	svc := mock.NewMockService(mockCtrl)
	svc.EXPECT().ListProducts(gomock.Any()).Return([]*domain.Product{{
		ID: 1, Name: "USB-C Hub", Description: "7-in-1", Price: decimal.MustParse("34.99"), Stock: 120,
	}}, nil)
	svc.EXPECT().GetCustomer(gomock.Any(), uint64(2)).Return(&domain.Customer{
		ID: 2, Name: "Bob", Email: "bob@example.com", LoyaltyPoints: 600, Tier: domain.TierSilver,
	}, nil)
	svc.EXPECT().GetCustomer(gomock.Any(), uint64(9)).Return(nil, domain.NewNotFound(domain.EntityCustomer, 9))
	svc.EXPECT().ListPromoCodes(gomock.Any()).Return([]*domain.PromoCode{{
		ID: 1, Code: "SAVE10", DiscountPercent: decimal.MustNew(10, 0), Active: true,
		MinOrderAmount: decimal.MustNew(50, 0),
	}}, nil)
	router := newTestRouter(t, svc, nil)

	w := do(router, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"USB-C Hub","description":"7-in-1","price":"34.99","stock":120}]`, w.Body.String())

	w = do(router, http.MethodGet, "/api/customers/2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bob","email":"bob@example.com","loyalty_points":600,"loyalty_tier":"silver"}`, w.Body.String())

	w = do(router, http.MethodGet, "/api/customers/9", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/promo-codes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"code":"SAVE10","discount_percent":"10","min_order_amount":"50.00"}]`, w.Body.String())
}

func TestRouter_Idempotency(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	body := `{"customer_id":1,"items":[{"product_id":7,"quantity":3}],"promo_code":"TEN"}`
	headers := map[string]string{"Idempotency-Key": "k-1"}
	sum := sha256.Sum256([]byte(body))
	stored := hex.EncodeToString(sum[:]) + "\n" + `{"id":10}`

	t.Run("First request is stored", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		cache := mock.NewMockIdempotencyCache(mockCtrl)
		svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), gomock.Any(), "TEN").Return(testOrder(), nil)
		cache.EXPECT().Get(gomock.Any(), "k-1").Return("", nil)
		cache.EXPECT().Set(gomock.Any(), "k-1", gomock.Any(), time.Hour).
			DoAndReturn(func(ctx context.Context, key, value string, ttl time.Duration) error {
				prefix := hex.EncodeToString(sum[:]) + "\n"
				assert.True(t, strings.HasPrefix(value, prefix))
				assert.Contains(t, strings.TrimPrefix(value, prefix), `"id":10`)
				return nil
			})

		w := do(newTestRouter(t, svc, cache), http.MethodPost, "/api/orders", body, headers)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
	})

	t.Run("Repeat is replayed", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		cache := mock.NewMockIdempotencyCache(mockCtrl)
		cache.EXPECT().Get(gomock.Any(), "k-1").Return(stored, nil)

		w := do(newTestRouter(t, svc, cache), http.MethodPost, "/api/orders", body, headers)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, `{"id":10}`, w.Body.String())
	})

	t.Run("Key reused with another body", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		cache := mock.NewMockIdempotencyCache(mockCtrl)
		cache.EXPECT().Get(gomock.Any(), "k-1").Return(stored, nil)

		other := `{"customer_id":2,"items":[{"product_id":7,"quantity":3}],"promo_code":"TEN"}`
		w := do(newTestRouter(t, svc, cache), http.MethodPost, "/api/orders", other, headers)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, `{"error":"idempotency key was used with a different request"}`, w.Body.String())
	})

	t.Run("Rejection is not stored", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		cache := mock.NewMockIdempotencyCache(mockCtrl)
		svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), gomock.Any(), "TEN").
			Return(nil, &domain.OutOfStockError{ProductID: 7, Requested: 3, Available: 0})
		cache.EXPECT().Get(gomock.Any(), "k-1").Return("", nil)

		w := do(newTestRouter(t, svc, cache), http.MethodPost, "/api/orders", body, headers)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Cache outage does not block orders", func(t *testing.T) {
		svc := mock.NewMockService(mockCtrl)
		cache := mock.NewMockIdempotencyCache(mockCtrl)
		svc.EXPECT().PlaceOrder(gomock.Any(), uint64(1), gomock.Any(), "TEN").Return(testOrder(), nil)
		cache.EXPECT().Get(gomock.Any(), "k-1").Return("", errors.New("dial tcp: refused"))
		cache.EXPECT().Set(gomock.Any(), "k-1", gomock.Any(), time.Hour).Return(errors.New("dial tcp: refused"))

		w := do(newTestRouter(t, svc, cache), http.MethodPost, "/api/orders", body, headers)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestRouter_SwaggerUI(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	router := newTestRouter(t, mock.NewMockService(mockCtrl), nil)

	w := do(router, http.MethodGet, "/docs/index.html", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger")
}
