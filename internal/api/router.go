package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"farm-records-backend/config"
	"farm-records-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	// Credential endpoints are rate limited per client IP.
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	requireSession := h.sessions.RequireSession()

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/push/vapid_public_key", h.GetVAPIDPublicKey)

		auth := api.Group("/auth")
		auth.POST("/register", rateLimiter, h.Register)
		auth.POST("/login", rateLimiter, h.Login)
		auth.POST("/logout", requireSession, h.Logout)
		auth.GET("/me", requireSession, h.Me)

		protected := api.Group("")
		protected.Use(requireSession)

		protected.GET("/farms", h.ListFarms)
		protected.POST("/farms", h.CreateFarm)
		protected.GET("/farms/:farmId", h.GetFarm)
		protected.PUT("/farms/:farmId", h.UpdateFarm)
		protected.DELETE("/farms/:farmId", h.DeleteFarm)

		protected.GET("/farms/:farmId/crops", h.ListCrops)
		protected.POST("/farms/:farmId/crops", h.CreateCrop)
		protected.GET("/crops/:id", h.GetCrop)
		protected.PUT("/crops/:id", h.UpdateCrop)
		protected.DELETE("/crops/:id", h.DeleteCrop)

		protected.GET("/farms/:farmId/weather", h.ListWeather)
		protected.POST("/farms/:farmId/weather", h.CreateWeather)
		protected.GET("/farms/:farmId/weather/latest", h.LatestWeather)
		protected.DELETE("/weather/:id", h.DeleteWeather)

		protected.GET("/recommendations", h.ListRecommendations)
		protected.POST("/recommendations", h.CreateRecommendation)
		protected.GET("/recommendations/:id", h.GetRecommendation)
		protected.DELETE("/recommendations/:id", h.DeleteRecommendation)

		protected.GET("/dashboard", h.Dashboard)

		protected.GET("/push/subscriptions", h.ListSubscriptions)
		protected.PUT("/push/subscriptions", h.PutSubscription)
		protected.DELETE("/push/subscriptions", h.DeleteSubscription)
	}

	return r
}
