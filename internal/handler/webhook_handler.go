package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docvision/internal/domain"
	"docvision/internal/notify"
)

// WebhookHandler exposes webhook subscriptions and the delivery log.
type WebhookHandler struct {
	notifier *notify.Notifier
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(notifier *notify.Notifier) *WebhookHandler {
	return &WebhookHandler{notifier: notifier}
}

// List handles GET /api/v1/webhooks
// @Summary List webhooks
// @Tags webhooks
// @Produce json
// @Success 200 {object} Response{data=[]notify.Webhook} "Webhooks"
// @Router /webhooks [get]
func (h *WebhookHandler) List(c *gin.Context) {
	hooks := h.notifier.List()
	RespondList(c, hooks, PagMeta{Total: len(hooks)})
}

// Deliveries handles GET /api/v1/webhooks/deliveries
// @Summary List webhook deliveries
// @Tags webhooks
// @Produce json
// @Param webhook_id query string false "Filter by webhook"
// @Param status query string false "Filter by status" Enums(pending, success, failed)
// @Param limit query int false "Most recent N deliveries" default(100)
// @Success 200 {object} Response{data=[]notify.Delivery} "Deliveries"
// @Router /webhooks/deliveries [get]
func (h *WebhookHandler) Deliveries(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}
	status := notify.DeliveryStatus(c.Query("status"))
	switch status {
	case "", notify.DeliveryPending, notify.DeliverySuccess, notify.DeliveryFailed:
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be pending, success or failed")
		return
	}
	deliveries := h.notifier.Deliveries(c.Query("webhook_id"), status, limit)
	RespondList(c, deliveries, PagMeta{Total: len(deliveries), Limit: limit})
}

// Register handles POST /api/v1/webhooks
// @Summary Register a webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param body body RegisterWebhookRequest true "Subscription"
// @Success 201 {object} Response{data=notify.Webhook} "Webhook registered"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Router /webhooks [post]
func (h *WebhookHandler) Register(c *gin.Context) {
	var req RegisterWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	events, err := notify.ParseEvents(req.Events)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_EVENT", err.Error())
		return
	}
	hook, err := h.notifier.Register(notify.Webhook{
		URL:     req.URL,
		Events:  events,
		Secret:  req.Secret,
		Headers: req.Headers,
		Active:  true,
	})
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_WEBHOOK", err.Error())
		return
	}
	RespondCreated(c, hook)
}

// Delete handles DELETE /api/v1/webhooks/:id
// @Summary Remove a webhook
// @Tags webhooks
// @Produce json
// @Param id path string true "Webhook ID"
// @Success 200 {object} Response "Webhook removed"
// @Failure 404 {object} ErrorResponseBody "Webhook not found"
// @Router /webhooks/{id} [delete]
func (h *WebhookHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !h.notifier.Unregister(id) {
		RespondError(c, http.StatusNotFound, "WEBHOOK_NOT_FOUND", "webhook not found")
		return
	}
	RespondOK(c, gin.H{"webhook_id": id, "deleted": true})
}

// Test handles POST /api/v1/webhooks/test
// @Summary Send a test event
// @Description Delivers a synthetic event to every webhook subscribed to its type and waits for the outcomes.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param body body TestWebhookRequest true "Event to send"
// @Success 200 {object} Response{data=[]notify.Delivery} "Delivery outcomes"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Router /webhooks/test [post]
func (h *WebhookHandler) Test(c *gin.Context) {
	var req TestWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	events, err := notify.ParseEvents([]string{req.EventType})
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_EVENT", err.Error())
		return
	}
	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	data["test"] = true

	deliveries, err := h.notifier.Trigger(c.Request.Context(), domain.NewEvent(events[0], "", "", data))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondList(c, deliveries, PagMeta{Total: len(deliveries)})
}
