package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/service"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/entity"
	"github.com/Intelygenai/paycyclexplorer/internal/identity"
	"github.com/Intelygenai/paycyclexplorer/internal/notification"
	"github.com/Intelygenai/paycyclexplorer/internal/repository/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()

	provider := identity.NewStaticProvider([]entity.User{
		{ID: "u-requester", Name: "Rita Requester", Email: "rita@example.com",
			Role: entity.RoleRequester, Permissions: []string{entity.PermissionCreatePR}},
		{ID: "u-officer", Name: "Omar Officer", Email: "omar@example.com",
			Role: entity.RoleProcurementOfficer,
			Permissions: []string{
				entity.PermissionCreatePO, entity.PermissionApprovePO,
				entity.PermissionManageVendors, entity.PermissionManageUsers,
			}},
		{ID: "u-default", Name: "Default Approver", Email: "default@example.com",
			Role: entity.RoleFinance, Permissions: []string{entity.PermissionApprovePR, entity.PermissionApprovePO}},
	})

	resolver := service.NewApprovalResolver(store.Approvers(), service.ResolverConfig{
		DefaultApprover: entity.Actor{ID: "u-default", Name: "Default Approver", Email: "default@example.com"},
	}, logger)

	sink := notification.NewLogSink(logger)

	requisitions := service.NewRequisitionService(
		store.Requisitions(), store.Orders(), store.Approvers(), store,
		resolver, provider, service.NewFirstActiveVendorSelector(store.Vendors()), sink,
		service.ConversionConfig{ShippingAddress: "1 Warehouse Way", BillingAddress: "100 Main St", Currency: "USD"},
		false, logger,
	)
	orders := service.NewOrderService(
		store.Orders(), store.Receipts(), store.Vendors(), store,
		resolver, provider, nil, sink, logger,
	)
	vendors := service.NewVendorService(store.Vendors(), store.Approvers(), provider, logger)

	server := NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, requisitions, orders, vendors, logger)
	return server.Router()
}

func doRequest(router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func requisitionBody() map[string]interface{} {
	return map[string]interface{}{
		"department":    "Engineering",
		"cost_center":   "CC-100",
		"budget_code":   "BUD-2026",
		"justification": "Workstation refresh",
		"date_needed":   time.Now().Add(14 * 24 * time.Hour).Format(time.RFC3339),
		"line_items": []map[string]interface{}{
			{"description": "Laptop stand", "category": "IT", "quantity": 3, "unit_price": "25"},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
}

func TestCreateRequisitionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/requisitions", "u-requester", requisitionBody())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, entity.PRStatusDraft, data["status"])
	assert.NotEmpty(t, data["id"])
}

func TestErrorStatusMapping(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		run    func() *httptest.ResponseRecorder
		status int
	}{
		{"missing identity header", func() *httptest.ResponseRecorder {
			return doRequest(router, http.MethodPost, "/api/v1/requisitions", "", requisitionBody())
		}, http.StatusUnauthorized},
		{"unknown user", func() *httptest.ResponseRecorder {
			return doRequest(router, http.MethodPost, "/api/v1/requisitions", "u-ghost", requisitionBody())
		}, http.StatusNotFound},
		{"missing permission", func() *httptest.ResponseRecorder {
			return doRequest(router, http.MethodPost, "/api/v1/requisitions", "u-officer", requisitionBody())
		}, http.StatusForbidden},
		{"validation failure", func() *httptest.ResponseRecorder {
			body := requisitionBody()
			body["line_items"] = []map[string]interface{}{}
			return doRequest(router, http.MethodPost, "/api/v1/requisitions", "u-requester", body)
		}, http.StatusBadRequest},
		{"malformed body", func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/requisitions", bytes.NewReader([]byte("{not json")))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(HeaderUserID, "u-requester")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}, http.StatusBadRequest},
		{"document not found", func() *httptest.ResponseRecorder {
			return doRequest(router, http.MethodGet, "/api/v1/requisitions/PR-missing", "u-requester", nil)
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.run()
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeEnvelope(t, w)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRequisitionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	// An active vendor so conversion can pick one.
	w := doRequest(router, http.MethodPost, "/api/v1/vendors", "u-officer", map[string]interface{}{
		"name":  "Acme Supplies",
		"email": "sales@acme.example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/v1/requisitions", "u-requester", requisitionBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	prID := decodeEnvelope(t, w).Data.(map[string]interface{})["id"].(string)

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/requisitions/%s/submit", prID), "u-requester", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, entity.PRStatusPendingApproval,
		decodeEnvelope(t, w).Data.(map[string]interface{})["status"])

	// Converting before approval is a state violation.
	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/requisitions/%s/convert", prID), "u-officer", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/requisitions/%s/decision", prID), "u-default",
		map[string]interface{}{"decision": "APPROVED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, entity.PRStatusApproved,
		decodeEnvelope(t, w).Data.(map[string]interface{})["status"])

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/requisitions/%s/convert", prID), "u-officer", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decodeEnvelope(t, w).Data.(map[string]interface{})
	order := result["order"].(map[string]interface{})
	assert.Equal(t, entity.POStatusDraft, order["status"])
	assert.Equal(t, prID, order["pr_id"])
}
