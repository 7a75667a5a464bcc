package main

import (
	"github.com/gin-gonic/gin"

	"factura-scanner.backend/internal/interfaces/http/handlers"
	"factura-scanner.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	webhookHandler *handlers.WebhookHandler
	healthHandler  *handlers.HealthHandler
	metrics        *middleware.Metrics
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/", d.healthHandler.Health)
	r.GET("/health", d.healthHandler.Health)
	r.POST("/webhook", d.webhookHandler.HandleWebhook)
	r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
}
