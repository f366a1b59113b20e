package handlers

import (
	"net/http"

	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrders lists orders the caller participates in
// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, orders)
}

// GetOrder returns one order
// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// UpdateStatus moves an order to a new status
// PATCH /api/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input models.TransitionInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := h.orderService.Transition(c.Request.Context(), userID, orderID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// ListWorkEvents returns the order's audit log
// GET /api/orders/:id/work-events
func (h *OrderHandler) ListWorkEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	events, err := h.orderService.ListWorkEvents(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, events)
}

// Checkout quotes the escrow payment
// GET /api/orders/:id/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	quote, err := h.orderService.Checkout(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, quote)
}

// ListPayments returns the order's payment ledger
// GET /api/orders/:id/payments
func (h *OrderHandler) ListPayments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.orderService.ListPayments(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, payments)
}
