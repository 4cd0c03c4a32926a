package handlers

import (
	"net/http"

	"agrihub/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) Home(c *gin.Context) {
	listing, err := h.catalog.ListFeatured(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *APIHandler) ProductDetail(c *gin.Context) {
	detail, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *APIHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *APIHandler) CategoryProducts(c *gin.Context) {
	listing, err := h.catalog.ProductsByCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *APIHandler) Search(c *gin.Context) {
	query := c.Query("q")
	products, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "products": products})
}

// Contact stores a contact-form inquiry.
func (h *APIHandler) Contact(c *gin.Context) {
	var input services.InquiryInput
	if !bind(c, &input) {
		return
	}

	if _, err := h.inquiry.Submit(c.Request.Context(), input); err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusCreated, redirectContact, "Request Received! Thank you for contacting AgriHub.", nil)
}
