package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/Zhima-Mochi/shopcore/internal/application/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/application/inventory"
	orderapp "github.com/Zhima-Mochi/shopcore/internal/application/order"
	paymentapp "github.com/Zhima-Mochi/shopcore/internal/application/payment"
	userapp "github.com/Zhima-Mochi/shopcore/internal/application/user"
	domain "github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/id"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
)

type approveGateway struct{}

func (approveGateway) Charge(ctx context.Context, orderID string, amount decimal.Decimal, method domain.Method) (bool, error) {
	return true, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	tel := observability.Nop()
	idGen := id.NewUUIDGenerator()

	ledger := inventory.NewService(store, tel)
	orders := orderapp.NewService(store, ledger, idGen, tel)
	payments := paymentapp.NewService(store, approveGateway{}, idGen, id.NewTransactionID, time.Second, tel)
	products := catalogapp.NewService(store, idGen, tel)
	users := userapp.NewService(store, idGen, tel)

	return NewRouter(RouterConfig{
		ServiceName: "shopcore-test",
		Orders:      orders,
		Payments:    payments,
		Products:    products,
		Users:       users,
		Telemetry:   tel,
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username": "alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decode[userResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/products", gin.H{
		"sku": "SKU-1", "name": "Widget", "price": "19.99", "stock_quantity": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[productResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"user_id": u.ID,
		"lines":   []gin.H{{"product_id": p.ID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[orderResponse](t, rec)
	assert.Equal(t, "PENDING", o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("59.97")))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, router, http.MethodPost, "/api/payments", gin.H{
		"order_id": o.ID, "method": "CREDIT_CARD",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pay := decode[paymentResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/payments/"+pay.ID+"/process", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	processed := decode[paymentResponse](t, rec)
	assert.Equal(t, "COMPLETED", processed.Status)
	assert.NotEmpty(t, processed.TransactionID)

	rec = doJSON(t, router, http.MethodGet, "/api/orders/"+o.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	confirmed := decode[orderResponse](t, rec)
	assert.Equal(t, "CONFIRMED", confirmed.Status)
}

func TestStatusMapping(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/orders/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/orders", gin.H{"user_id": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username": "alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username": "alice", "email": "second@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/orders/nope/status", gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsufficientStockConflict(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username": "alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decode[userResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/products", gin.H{
		"sku": "SKU-1", "name": "Widget", "price": "1.00", "stock_quantity": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[productResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"user_id": u.ID,
		"lines":   []gin.H{{"product_id": p.ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestCancelOrder(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", gin.H{
		"username": "alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decode[userResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/products", gin.H{
		"sku": "SKU-1", "name": "Widget", "price": "1.00", "stock_quantity": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[productResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"user_id": u.ID,
		"lines":   []gin.H{{"product_id": p.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	o := decode[orderResponse](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[productResponse](t, rec)
	assert.Equal(t, 5, after.StockQuantity)

	rec = doJSON(t, router, http.MethodPost, "/api/orders/"+o.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
