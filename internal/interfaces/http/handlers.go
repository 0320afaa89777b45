package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Intelygenai/paycyclexplorer/internal/application/service"
	"github.com/Intelygenai/paycyclexplorer/internal/domain/errs"
	"github.com/Intelygenai/paycyclexplorer/internal/identity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	requisitions service.RequisitionService
	orders       service.OrderService
	vendors      service.VendorService
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	requisitions service.RequisitionService,
	orders service.OrderService,
	vendors service.VendorService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		requisitions: requisitions,
		orders:       orders,
		vendors:      vendors,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// writeError maps a domain error to an HTTP status and writes the
// standard error envelope.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, identity.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errs.IsPermission(err):
		status = http.StatusForbidden
	case errs.IsNotFound(err), errs.IsApproverNotFound(err):
		status = http.StatusNotFound
	case errs.IsConflict(err):
		status = http.StatusConflict
	case errs.IsInvalidState(err):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func (h *Handlers) writeOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// --- Requisitions ---

// CreateRequisition handles POST /api/v1/requisitions
func (h *Handlers) CreateRequisition(c *gin.Context) {
	var input service.CreateRequisitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	pr, err := h.requisitions.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusCreated, pr)
}

// ListRequisitions handles GET /api/v1/requisitions
func (h *Handlers) ListRequisitions(c *gin.Context) {
	prs, err := h.requisitions.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, prs)
}

// GetRequisition handles GET /api/v1/requisitions/:id
func (h *Handlers) GetRequisition(c *gin.Context) {
	pr, err := h.requisitions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, pr)
}

// UpdateRequisition handles PUT /api/v1/requisitions/:id
func (h *Handlers) UpdateRequisition(c *gin.Context) {
	var input service.UpdateRequisitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	pr, err := h.requisitions.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, pr)
}

// SubmitRequisition handles POST /api/v1/requisitions/:id/submit
func (h *Handlers) SubmitRequisition(c *gin.Context) {
	pr, err := h.requisitions.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, pr)
}

// DecideRequisition handles POST /api/v1/requisitions/:id/decision
func (h *Handlers) DecideRequisition(c *gin.Context) {
	var input service.DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	pr, err := h.requisitions.Decide(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, pr)
}

// ConvertRequisition handles POST /api/v1/requisitions/:id/convert
func (h *Handlers) ConvertRequisition(c *gin.Context) {
	result, err := h.requisitions.ConvertToPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusCreated, result)
}

// --- Orders ---

// CreateOrder handles POST /api/v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	po, err := h.orders.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusCreated, po)
}

// ListOrders handles GET /api/v1/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	pos, err := h.orders.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, pos)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	po, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, po)
}

// SubmitOrder handles POST /api/v1/orders/:id/submit
func (h *Handlers) SubmitOrder(c *gin.Context) {
	po, err := h.orders.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, po)
}

// DecideOrder handles POST /api/v1/orders/:id/decision
func (h *Handlers) DecideOrder(c *gin.Context) {
	var input service.DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	po, err := h.orders.Decide(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, po)
}

// SendOrderToVendor handles POST /api/v1/orders/:id/send
func (h *Handlers) SendOrderToVendor(c *gin.Context) {
	po, err := h.orders.SendToVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, po)
}

// RecordReceipt handles POST /api/v1/orders/:id/receipts
func (h *Handlers) RecordReceipt(c *gin.Context) {
	var input service.RecordReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	gr, err := h.orders.RecordReceipt(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusCreated, gr)
}

// ListReceipts handles GET /api/v1/orders/:id/receipts
func (h *Handlers) ListReceipts(c *gin.Context) {
	receipts, err := h.orders.Receipts(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, receipts)
}

// GetReceipt handles GET /api/v1/receipts/:id
func (h *Handlers) GetReceipt(c *gin.Context) {
	gr, err := h.orders.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, gr)
}

// --- Vendors and approver bindings ---

// CreateVendor handles POST /api/v1/vendors
func (h *Handlers) CreateVendor(c *gin.Context) {
	var input service.VendorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	v, err := h.vendors.CreateVendor(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusCreated, v)
}

// ListVendors handles GET /api/v1/vendors
func (h *Handlers) ListVendors(c *gin.Context) {
	vs, err := h.vendors.ListVendors(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, vs)
}

// GetVendor handles GET /api/v1/vendors/:id
func (h *Handlers) GetVendor(c *gin.Context) {
	v, err := h.vendors.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, v)
}

// UpdateVendor handles PUT /api/v1/vendors/:id
func (h *Handlers) UpdateVendor(c *gin.Context) {
	var input service.VendorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	v, err := h.vendors.UpdateVendor(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, v)
}

// CreateBinding handles POST /api/v1/approvers
func (h *Handlers) CreateBinding(c *gin.Context) {
	var input service.ApproverBindingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	b, err := h.vendors.CreateBinding(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusCreated, b)
}

// ListBindings handles GET /api/v1/approvers
func (h *Handlers) ListBindings(c *gin.Context) {
	if costCenter := c.Query("cost_center"); costCenter != "" {
		bs, err := h.vendors.ListBindingsByCostCenter(c.Request.Context(), costCenter)
		if err != nil {
			h.writeError(c, err)
			return
		}
		h.writeOK(c, http.StatusOK, bs)
		return
	}
	bs, err := h.vendors.ListBindings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, bs)
}

// UpdateBinding handles PUT /api/v1/approvers/:id
func (h *Handlers) UpdateBinding(c *gin.Context) {
	var input service.ApproverBindingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	b, err := h.vendors.UpdateBinding(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, b)
}

// DeleteBinding handles DELETE /api/v1/approvers/:id
func (h *Handlers) DeleteBinding(c *gin.Context) {
	if err := h.vendors.DeleteBinding(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.writeOK(c, http.StatusOK, gin.H{"deleted": c.Param("id")})
}
