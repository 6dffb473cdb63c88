package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/application/trade"
)

// PurchaseOrderHandler handles purchase order reads and status changes
type PurchaseOrderHandler struct {
	BaseHandler
	cascade *trade.CascadeService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(cascade *trade.CascadeService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{cascade: cascade}
}

// Get godoc
// @ID           getPurchaseOrder
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.PurchaseOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	po, err := h.cascade.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// Acknowledge marks the order as accepted by its target
// @ID           acknowledgePurchaseOrder
// @Tags         purchase-orders
// @Router       /purchase-orders/{id}/acknowledge [post]
func (h *PurchaseOrderHandler) Acknowledge(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	po, err := h.cascade.Acknowledge(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// Cancel cancels the order
// @ID           cancelPurchaseOrder
// @Tags         purchase-orders
// @Router       /purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	po, err := h.cascade.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}
