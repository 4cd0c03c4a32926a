package handlers

import (
	"agrihub/internal/logger"
	"agrihub/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	CORSOrigins []string
	MediaURL    string
	MediaRoot   string
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(cfg RouterConfig, h *APIHandler, sessions services.SessionService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	if cfg.MediaURL != "" && cfg.MediaRoot != "" {
		router.Static(cfg.MediaURL, cfg.MediaRoot)
	}
	router.GET("/health", h.Health)

	requireAuth := RequireAuth(sessions)

	api := router.Group("/api")
	{
		api.GET("/", h.Home)
		api.GET("/product/:slug", h.ProductDetail)
		api.GET("/categories", h.Categories)
		api.GET("/category/:slug", h.CategoryProducts)
		api.GET("/search", h.Search)
		api.POST("/contact", OptionalAuth(sessions), h.Contact)

		api.POST("/accounts/register", h.Register)
		api.POST("/accounts/login", h.Login)
		api.POST("/accounts/logout", requireAuth, h.Logout)
		api.POST("/accounts/password", requireAuth, h.ChangePassword)

		api.GET("/checkout", OptionalAuth(sessions), h.Checkout)
	}

	authed := api.Group("", requireAuth)
	{
		authed.POST("/add-to-cart", h.AddToCart)
		authed.GET("/cart", h.ViewCart)
		authed.POST("/cart/:id/remove", h.RemoveCartItem)
		authed.POST("/cart/:id/plus", h.IncrementCartItem)
		authed.POST("/cart/:id/minus", h.DecrementCartItem)

		authed.POST("/checkout", h.PlaceOrder)
		authed.GET("/orders", h.Orders)
		authed.POST("/orders/:id/cancel", h.CancelOrder)
		authed.PUT("/orders/:id/status", h.UpdateOrderStatus)

		authed.GET("/profile", h.Profile)
		authed.PUT("/profile/farm", h.UpdateFarmProfile)
		authed.POST("/profile/address", h.AddAddress)
		authed.POST("/profile/address/:id/remove", h.RemoveAddress)

		authed.POST("/produce", h.CreateProduce)
		authed.GET("/produce/export", h.ExportProduce)
		authed.PUT("/produce/:id", h.UpdateProduce)
		authed.DELETE("/produce/:id", h.DeleteProduce)

		authed.GET("/messages", h.Messages)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
