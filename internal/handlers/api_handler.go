package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agrihub/internal/logger"
	"agrihub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const (
	redirectHome    = "/"
	redirectCart    = "/cart/"
	redirectContact = "/contact/"
	redirectLogin   = "/accounts/login/"
	redirectProfile = "/accounts/profile/"
	redirectOrders  = "/orders/"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Catalog  services.CatalogService
	Cart     services.CartService
	Orders   services.OrderService
	Produce  services.ProduceService
	Inquiry  services.InquiryService
	Users    services.UserService
	Address  services.AddressService
	Sessions services.SessionService
	Export   services.ExportService
}

type APIHandler struct {
	catalog  services.CatalogService
	cart     services.CartService
	orders   services.OrderService
	produce  services.ProduceService
	inquiry  services.InquiryService
	users    services.UserService
	address  services.AddressService
	sessions services.SessionService
	export   services.ExportService
}

func NewAPIHandler(s Services) *APIHandler {
	return &APIHandler{
		catalog:  s.Catalog,
		cart:     s.Cart,
		orders:   s.Orders,
		produce:  s.Produce,
		inquiry:  s.Inquiry,
		users:    s.Users,
		address:  s.Address,
		sessions: s.Sessions,
		export:   s.Export,
	}
}

// redirect answers a successful write with the page a browser client should go to next.
// The message is also queued as a flash message for logged in callers.
func (h *APIHandler) redirect(c *gin.Context, status int, target, message string, extra gin.H) {
	if message != "" {
		if session, ok := sessionFrom(c); ok {
			if err := h.sessions.Flash(c.Request.Context(), session.ID, message); err != nil {
				logger.Warn("Failed to queue flash message", zap.String("session", session.ID), zap.Error(err))
			}
		}
	}

	body := gin.H{"redirect": target, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please correct the errors below.", "fields": verr.Fields})
	case errors.Is(err, services.ErrAuthorizationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": redirectLogin})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bind decodes a JSON or form body into obj.
func bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return false
	}
	return true
}

// checkbox reads an HTML checkbox. Browsers send "on" for ticked boxes and nothing otherwise.
func checkbox(c *gin.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.PostForm(name))) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func isJSON(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON
}

// idParam parses a numeric path parameter. Malformed ids are reported as missing records.
func idParam(c *gin.Context, name, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": what + ": " + services.ErrNotFound.Error()})
		return 0, false
	}
	return uint(id), true
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
