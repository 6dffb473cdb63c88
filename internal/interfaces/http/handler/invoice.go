package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/application/billing"
)

// InvoiceHandler handles invoice generation and payment
type InvoiceHandler struct {
	BaseHandler
	invoices *billing.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *billing.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// respond answers 201 for a new invoice and 200 when one already existed
func (h *InvoiceHandler) respond(c *gin.Context, result *billing.GenerateResult) {
	if result.Created {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// Customer godoc
// @ID           generateCustomerInvoice
// @Summary      Issue the customer invoice of a job
// @Description  Idempotent. Answers 201 for a new invoice and 200 when one existed.
// @Tags         invoices
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[billing.GenerateResult]
// @Success      201 {object} APIResponse[billing.GenerateResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /jobs/{id}/invoices/customer [post]
func (h *InvoiceHandler) Customer(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "job")
	if !ok {
		return
	}
	result, err := h.invoices.GenerateCustomerInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, result)
}

// Settlement godoc
// @ID           generateSettlementInvoice
// @Summary      Issue the settlement invoice of a purchase order
// @Tags         invoices
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[billing.GenerateResult]
// @Success      201 {object} APIResponse[billing.GenerateResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /purchase-orders/{id}/invoices/settlement [post]
func (h *InvoiceHandler) Settlement(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	result, err := h.invoices.GenerateSettlementInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, result)
}

// Get returns an invoice
// @ID           getInvoice
// @Tags         invoices
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "invoice")
	if !ok {
		return
	}
	inv, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Pay godoc
// @ID           payInvoice
// @Summary      Record payment of an invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body billing.MarkPaidRequest false "Payment time, now when omitted"
// @Success      200 {object} APIResponse[billing.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /invoices/{id}/pay [post]
func (h *InvoiceHandler) Pay(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "invoice")
	if !ok {
		return
	}
	var req billing.MarkPaidRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	var paidAt time.Time
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	inv, err := h.invoices.MarkPaid(c.Request.Context(), id, paidAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}
