package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/printchain/backend/internal/application/intake"
)

// WebhookTokenHeader carries the per-source secret of structured webhooks
const WebhookTokenHeader = "X-Webhook-Token"

// WebhookHandler receives inbound purchase orders and exposes the review
// queue of inbound events
type WebhookHandler struct {
	BaseHandler
	webhooks *intake.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhooks *intake.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// Email godoc
// @ID           receiveEmailWebhook
// @Summary      Receive a purchase order email
// @Description  Rejected, duplicate and review outcomes are reported in the body with status 200.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        source query string false "Source name, the configured default when omitted"
// @Param        request body intake.EmailMessage true "Email as delivered by the mail provider"
// @Success      200 {object} APIResponse[intake.WebhookResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /webhooks/email [post]
func (h *WebhookHandler) Email(c *gin.Context) {
	var msg intake.EmailMessage
	if !h.BindJSON(c, &msg) {
		return
	}
	if src := c.Query("source"); src != "" {
		msg.Source = src
	}
	resp, err := h.webhooks.ReceiveEmail(c.Request.Context(), msg)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Structured godoc
// @ID           receiveStructuredWebhook
// @Summary      Receive a purchase order from a source system
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        source path string true "Source name"
// @Param        X-Webhook-Token header string true "Source token"
// @Param        request body intake.StructuredPayload true "Purchase order"
// @Success      200 {object} APIResponse[intake.WebhookResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /webhooks/{source}/purchase-orders [post]
func (h *WebhookHandler) Structured(c *gin.Context) {
	var payload intake.StructuredPayload
	if !h.BindJSON(c, &payload) {
		return
	}
	resp, err := h.webhooks.ReceiveStructured(c.Request.Context(), c.Param("source"), c.GetHeader(WebhookTokenHeader), payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListEvents pages through inbound events, newest first
// @ID           listInboundEvents
// @Tags         inbound-events
// @Param        state query string false "Event state"
// @Param        source query string false "Source name"
// @Router       /inbound-events [get]
func (h *WebhookHandler) ListEvents(c *gin.Context) {
	filter := intake.InboundEventListFilter{
		State:    c.Query("state"),
		Source:   c.Query("source"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	result, err := h.webhooks.ListEvents(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetEvent returns one inbound event with its extracted fields
// @ID           getInboundEvent
// @Tags         inbound-events
// @Router       /inbound-events/{id} [get]
func (h *WebhookHandler) GetEvent(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "event")
	if !ok {
		return
	}
	e, err := h.webhooks.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, e)
}

// Reprocess godoc
// @ID           reprocessInboundEvent
// @Summary      Run a NEEDS_REVIEW or FAILED event through the pipeline again
// @Tags         inbound-events
// @Param        id path string true "Event ID" format(uuid)
// @Success      200 {object} APIResponse[intake.WebhookResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /inbound-events/{id}/reprocess [post]
func (h *WebhookHandler) Reprocess(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "event")
	if !ok {
		return
	}
	resp, err := h.webhooks.Reprocess(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
