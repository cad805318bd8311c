package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/report"
	"github.com/vladislavdragonenkov/scm/internal/service/logistics"
	"github.com/vladislavdragonenkov/scm/internal/storage/memory"
	"github.com/vladislavdragonenkov/scm/internal/transport/httpapi"
)

type apiError struct {
	Error struct {
		Code   string              `json:"code"`
		Fields []domain.FieldError `json:"fields"`
	} `json:"error"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	repos := memory.NewStore().Repositories()
	handler := httpapi.NewHandler(logistics.New(repos), report.NewEngine(repos), nil)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func seed(t *testing.T, srv *httptest.Server) (order domain.Order, cargo domain.Cargo, leg domain.RouteLeg) {
	t.Helper()
	var c domain.Contractor
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/contractors", map[string]any{"name": "АО Металлург", "role": "supplier"}, &c))
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/contractors", map[string]any{"name": "ООО Ромашка", "role": "client"}, &c))
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/contractors", map[string]any{"name": "ТК Магистраль", "role": "carrier"}, &c))

	var w domain.Warehouse
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/warehouses", map[string]any{"id": "wh1", "name": "Склад Москва", "address": "Москва", "type": "main"}, &w))
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/warehouses", map[string]any{"id": "wh2", "name": "Склад Казань", "address": "Казань", "type": "transit"}, &w))

	var tr domain.Transport
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/transport", map[string]any{"regNumber": "А123АА77", "type": "truck", "capacity": 20, "contractorId": 3}, &tr))

	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/orders", map[string]any{
		"orderNumber": "ORD-2024-001",
		"createdAt":   "2024-01-15T08:00:00Z",
		"totalCost":   "150000.50",
		"senderId":    1,
		"recipientId": 2,
	}, &order))
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/orders/"+order.ID+"/cargos", map[string]any{
		"cargoId": "CRG-001", "weight": 500, "volume": 4,
	}, &cargo))
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/cargos/"+cargo.ID+"/route-legs", map[string]any{
		"startWarehouseId": "wh1", "endWarehouseId": "wh2", "sequenceOrder": 1, "assignedTransportId": "А123АА77", "status": "completed",
	}, &leg))
	return order, cargo, leg
}

func TestHandler_CRUDFlow(t *testing.T) {
	srv := newServer(t)
	order, cargo, leg := seed(t, srv)

	require.Equal(t, order.ID, cargo.OrderID)
	require.Equal(t, cargo.ID, leg.CargoID)
	require.Equal(t, "150000.5", order.TotalCost.String())

	var contractors []domain.Contractor
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/contractors?role=carrier", nil, &contractors))
	require.Len(t, contractors, 1)
	require.Equal(t, "ТК Магистраль", contractors[0].Name)

	var updated domain.Order
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPatch, "/orders/"+order.ID, map[string]any{"status": "in_transit"}, &updated))
	require.Equal(t, domain.OrderStatusInTransit, updated.Status)

	var rejected apiError
	require.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/route-legs/"+leg.ID+"/events", map[string]any{
		"eventType": "delayed", "timestamp": "2024-01-16T10:00:00Z",
	}, &rejected))
	require.Equal(t, "validation_failed", rejected.Error.Code)

	var event domain.TrackingEvent
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/route-legs/"+leg.ID+"/events", map[string]any{
		"eventType": "delayed", "timestamp": "2024-01-16T10:00:00Z", "delayReason": "documents",
	}, &event))
	require.Equal(t, domain.DelayReasonDocuments, event.DelayReason)

	var events []domain.TrackingEvent
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/route-legs/"+leg.ID+"/events", nil, &events))
	require.Len(t, events, 1)

	require.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/cargos/"+cargo.ID, nil, nil))
	require.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/cargos/"+cargo.ID, nil, nil))

	var apiErr apiError
	require.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/route-legs/"+leg.ID, nil, &apiErr))
	require.Equal(t, "not_found", apiErr.Error.Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	srv := newServer(t)
	order, _, _ := seed(t, srv)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
		field  string
	}{
		{
			name:   "same sender and recipient", method: http.MethodPost, path: "/orders",
			body:   map[string]any{"orderNumber": "ORD-2", "senderId": 1, "recipientId": 1},
			status: http.StatusBadRequest, code: "validation_failed", field: "senderId",
		},
		{
			name:   "zero weight", method: http.MethodPost, path: "/cargos",
			body:   map[string]any{"cargoId": "CRG-2", "orderId": order.ID, "weight": 0, "volume": 1},
			status: http.StatusBadRequest, code: "validation_failed", field: "weight",
		},
		{
			name:   "unknown field", method: http.MethodPost, path: "/contractors",
			body:   map[string]any{"name": "X", "role": "client", "nickname": "x"},
			status: http.StatusBadRequest, code: "validation_failed", field: "body",
		},
		{
			name:   "unknown recipient", method: http.MethodPost, path: "/orders",
			body:   map[string]any{"orderNumber": "ORD-3", "senderId": 1, "recipientId": 42},
			status: http.StatusUnprocessableEntity, code: "unresolved_reference", field: "recipientId",
		},
		{
			name:   "duplicate order number", method: http.MethodPost, path: "/orders",
			body:   map[string]any{"orderNumber": "ORD-2024-001", "senderId": 1, "recipientId": 2},
			status: http.StatusConflict, code: "conflict",
		},
		{
			name:   "bad contractor id", method: http.MethodGet, path: "/contractors/abc",
			status: http.StatusBadRequest, code: "validation_failed", field: "id",
		},
		{
			name:   "missing warehouse", method: http.MethodGet, path: "/warehouses/wh9",
			status: http.StatusNotFound, code: "not_found",
		},
		{
			name:   "inverted report dates", method: http.MethodGet, path: "/reports/orders?dateFrom=2024-02-01&dateTo=2024-01-01",
			status: http.StatusBadRequest, code: "validation_failed", field: "dateFrom",
		},
		{
			name:   "malformed date", method: http.MethodGet, path: "/reports/kpi?dateFrom=yesterday",
			status: http.StatusBadRequest, code: "validation_failed", field: "dateFrom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr apiError
			require.Equal(t, tt.status, do(t, srv, tt.method, tt.path, tt.body, &apiErr))
			require.Equal(t, tt.code, apiErr.Error.Code)
			if tt.field == "" {
				return
			}
			fields := make([]string, 0, len(apiErr.Error.Fields))
			for _, f := range apiErr.Error.Fields {
				fields = append(fields, f.Field)
			}
			require.Contains(t, fields, tt.field)
		})
	}
}

func TestHandler_Reports(t *testing.T) {
	srv := newServer(t)
	seed(t, srv)

	var orders []report.OrderStatusItem
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/reports/orders?contractorId=2&dateFrom=2024-01-15&dateTo=2024-01-15", nil, &orders))
	require.Len(t, orders, 1)
	require.Equal(t, "ООО Ромашка", orders[0].RecipientName)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/reports/orders?dateTo=2024-01-14", nil, &orders))
	require.Empty(t, orders)

	var carriers []report.CarrierEfficiencyItem
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/reports/carriers", nil, &carriers))
	require.Len(t, carriers, 1)
	require.Equal(t, 1, carriers[0].CompletedLegs)
	require.True(t, carriers[0].Synthetic)

	var kpi report.KPIReport
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/reports/kpi", nil, &kpi))
	require.Equal(t, 1, kpi.TotalOrders)
	require.Equal(t, 1, kpi.OrdersInProgress)

	var stats report.DashboardStats
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/dashboard/stats", nil, &stats))
	require.Equal(t, 3, stats.TotalContractors)
	require.Equal(t, 1, stats.TotalCargos)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := newServer(t)
	require.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodPut, "/reports/kpi", nil, nil))
}
