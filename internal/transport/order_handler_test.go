package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"tookjai-pos/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOrderRouter(settlement *fakeSettlementService, limiter func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()
	NewOrderHandler(settlement, limiter, time.UTC, zap.NewNop()).RegisterRoutes(router)
	return router
}

const exampleOrder = `{
	"member": {"phone": "-"},
	"items": [{"code": "A1", "name": "A1", "qty": 2, "price": 50, "total": 100}],
	"payment_type": "cash",
	"cash": 100, "total": 100, "change": 0
}`

func TestSettleMapsRequest(t *testing.T) {
	settlement := newFakeSettlementService()
	router := newOrderRouter(settlement, nil)

	w := serve(router, http.MethodPost, "/api/orders", exampleOrder)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req := settlement.lastRequest
	assert.Equal(t, domain.NoMemberPhone, req.MemberPhone)
	assert.Equal(t, domain.PaymentCash, req.PaymentType)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "A1", req.Items[0].Code)
	assert.Equal(t, 2, req.Items[0].Qty)
	assert.Equal(t, "100", req.Items[0].Total.String())
	assert.Nil(t, req.EarnedPoints)

	var result domain.SettlementResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.StateCompleted, result.State)
	assert.Empty(t, result.Warnings)
}

func TestSettleWithWarningsStillSucceeds(t *testing.T) {
	router := newOrderRouter(newFakeSettlementService(), nil)

	w := serve(router, http.MethodPost, "/api/orders", `{
		"items": [{"code": "MISSING", "qty": 1, "price": 10, "total": 10}],
		"payment_type": "transfer", "total": 10
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var result domain.SettlementResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.StateCompletedWithWarnings, result.State)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, domain.WarningNotFound, result.Warnings[0].Kind)
}

func TestSettleRejectsInvalidOrders(t *testing.T) {
	router := newOrderRouter(newFakeSettlementService(), nil)

	tests := map[string]string{
		"no items":        `{"items": [], "payment_type": "cash"}`,
		"zero qty":        `{"items": [{"code": "A1", "qty": 0}], "payment_type": "cash"}`,
		"missing code":    `{"items": [{"qty": 1}], "payment_type": "cash"}`,
		"unknown payment": `{"items": [{"code": "A1", "qty": 1}], "payment_type": "card"}`,
		"negative redeem": `{"items": [{"code": "A1", "qty": 1}], "payment_type": "cash", "redeem_points": -5}`,
		"bad phone":       `{"member": {"phone": "call me"}, "items": [{"code": "A1", "qty": 1}], "payment_type": "cash"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := serve(router, http.MethodPost, "/api/orders", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestSettlePersistFailureIsInternalError(t *testing.T) {
	settlement := newFakeSettlementService()
	settlement.settleErr = errors.New("insert order: connection reset")
	router := newOrderRouter(settlement, nil)

	w := serve(router, http.MethodPost, "/api/orders", exampleOrder)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestOrderLookupAndReprint(t *testing.T) {
	settlement := newFakeSettlementService()
	router := newOrderRouter(settlement, countingLimiter(1))

	w := serve(router, http.MethodPost, "/api/orders", exampleOrder)
	require.Equal(t, http.StatusCreated, w.Code)
	var result domain.SettlementResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	id := result.Order.ID

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/orders/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/orders/unknown", "").Code)

	w = serve(router, http.MethodPost, "/api/orders/"+id+"/reprint", "")
	require.Equal(t, http.StatusOK, w.Code)
	var reprint ReprintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reprint))
	assert.Equal(t, id, reprint.Order.ID)
	assert.True(t, reprint.Print.Printed)

	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodPost, "/api/orders/"+id+"/reprint", "").Code)
	assert.Equal(t, []string{id}, settlement.reprinted)
}

func TestOrderListAndReportRanges(t *testing.T) {
	settlement := newFakeSettlementService()
	router := newOrderRouter(settlement, nil)

	w := serve(router, http.MethodGet, "/api/orders?from=2025-02-01&to=2025-02-28", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, settlement.lastFrom)
	require.NotNil(t, settlement.lastTo)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), *settlement.lastFrom)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), *settlement.lastTo)

	w = serve(router, http.MethodGet, "/api/orders/report?from=2025-02-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, settlement.lastTo)

	var report domain.SalesReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "100", report.TotalSales.String())

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/orders/report?from=2025-03-01&to=2025-02-01", "").Code)
}
