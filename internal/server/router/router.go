package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
// webhook may be nil when the WhatsApp channel is disabled.
func New(batches *handlers.BatchHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.GET("/batches", batches.List)
		api.POST("/batches", batches.Create)
		api.GET("/batches/:id", batches.Get)
		api.PATCH("/batches/:id", batches.Update)
		api.DELETE("/batches/:id", batches.Delete)
		api.GET("/batches/:id/price", batches.MinPrice)
		api.POST("/batches/:id/sales", batches.AddSale)
		api.DELETE("/batches/:id/sales/:saleID", batches.RemoveSale)
		api.GET("/month", batches.Month)
		api.PUT("/month", batches.UpdateMonth)
		api.POST("/export", batches.Export)
	}

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/send-message", webhook.SendMessage)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized", zap.Bool("whatsapp", webhook != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
