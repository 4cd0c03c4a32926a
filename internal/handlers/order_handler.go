package handlers

import (
	"net/http"

	"agrihub/internal/models"

	"github.com/gin-gonic/gin"
)

// Checkout shows the basket summary to logged in users and an empty placeholder otherwise.
func (h *APIHandler) Checkout(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "redirect": redirectLogin})
		return
	}

	view, err := h.cart.ViewCart(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "checkout": view})
}

func (h *APIHandler) PlaceOrder(c *gin.Context) {
	var req struct {
		AddressID uint `form:"address_id" json:"address_id"`
	}
	if !bind(c, &req) {
		return
	}

	placed, err := h.orders.PlaceOrder(c.Request.Context(), mustSession(c).Actor(), req.AddressID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusCreated, redirectOrders, "Your order has been placed.", gin.H{
		"orders":          placed.Orders,
		"amount":          placed.Amount,
		"shipping_amount": placed.Shipping,
		"total_amount":    placed.Total,
	})
}

func (h *APIHandler) Orders(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), mustSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *APIHandler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), mustSession(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectOrders, "Your order has been cancelled.", gin.H{"order": order})
}

func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id", "order")
	if !ok {
		return
	}

	var req struct {
		Status string `form:"status" json:"status"`
	}
	if !bind(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), mustSession(c).Actor(), id, models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
