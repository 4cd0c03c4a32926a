package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"agrihub/internal/services"

	"github.com/gin-gonic/gin"
)

// AddToCart takes the product id from the prod_id query parameter.
func (h *APIHandler) AddToCart(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("prod_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, fmt.Errorf("product: %w", services.ErrNotFound))
		return
	}

	item, err := h.cart.AddToCart(c.Request.Context(), mustSession(c).UserID, uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectCart, "", gin.H{"item": item})
}

func (h *APIHandler) ViewCart(c *gin.Context) {
	view, err := h.cart.ViewCart(c.Request.Context(), mustSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) RemoveCartItem(c *gin.Context) {
	id, ok := idParam(c, "id", "cart item")
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(c.Request.Context(), mustSession(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectCart, "", nil)
}

func (h *APIHandler) IncrementCartItem(c *gin.Context) {
	id, ok := idParam(c, "id", "cart item")
	if !ok {
		return
	}

	item, err := h.cart.IncrementItem(c.Request.Context(), mustSession(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectCart, "", gin.H{"item": item})
}

func (h *APIHandler) DecrementCartItem(c *gin.Context) {
	id, ok := idParam(c, "id", "cart item")
	if !ok {
		return
	}

	item, err := h.cart.DecrementItem(c.Request.Context(), mustSession(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectCart, "", gin.H{"item": item})
}
