package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"agrihub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *APIHandler) CreateProduce(c *gin.Context) {
	input, ok := bindProduce(c)
	if !ok {
		return
	}
	image, closeImage, ok := produceImage(c)
	if !ok {
		return
	}
	defer closeImage()

	product, err := h.produce.Create(c.Request.Context(), mustSession(c).Actor(), input, image)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusCreated, redirectHome, "New produce item added successfully!", gin.H{"product": product})
}

func (h *APIHandler) UpdateProduce(c *gin.Context) {
	id, ok := idParam(c, "id", "product")
	if !ok {
		return
	}
	input, ok := bindProduce(c)
	if !ok {
		return
	}
	image, closeImage, ok := produceImage(c)
	if !ok {
		return
	}
	defer closeImage()

	product, err := h.produce.Update(c.Request.Context(), mustSession(c).Actor(), id, input, image)
	if err != nil {
		respondError(c, err)
		return
	}
	message := fmt.Sprintf("Produce '%s' updated successfully.", product.Title)
	h.redirect(c, http.StatusOK, redirectHome, message, gin.H{"product": product})
}

func (h *APIHandler) DeleteProduce(c *gin.Context) {
	id, ok := idParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.produce.Delete(c.Request.Context(), mustSession(c).Actor(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.redirect(c, http.StatusOK, redirectHome, fmt.Sprintf("Produce '%s' successfully deleted.", product.Title), nil)
}

// ExportProduce downloads the whole catalog as an xlsx workbook.
func (h *APIHandler) ExportProduce(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.ExportCatalog(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=produce.xlsx")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func bindProduce(c *gin.Context) (services.ProduceInput, bool) {
	var input services.ProduceInput
	if !bind(c, &input) {
		return input, false
	}
	if !isJSON(c) {
		input.IsActive = checkbox(c, "is_active")
		input.IsFeatured = checkbox(c, "is_featured")
	}
	return input, true
}

// produceImage opens the optional product_image upload. The returned func closes it.
func produceImage(c *gin.Context) (*services.ImageUpload, func(), bool) {
	noop := func() {}
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, noop, true
	}

	header, err := c.FormFile("product_image")
	if err == http.ErrMissingFile {
		return nil, noop, true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file upload"})
		return nil, noop, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file upload"})
		return nil, noop, false
	}
	return &services.ImageUpload{Filename: header.Filename, Reader: file}, func() { file.Close() }, true
}
