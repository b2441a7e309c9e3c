package handlers

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes wires every API route onto the Echo instance.
func RegisterRoutes(e *echo.Echo, h *APIHandler, logger *slog.Logger) {
	e.HTTPErrorHandler = CustomHTTPErrorHandler
	SetErrorLogger(logger)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
	}))
	e.Use(requestLogger(logger))

	api := e.Group("/api/v1")

	// Health
	api.GET("/health", h.HealthCheck)

	// Products
	api.GET("/products", h.ListProducts)
	api.POST("/products", h.CreateProduct)
	api.PUT("/products/:id", h.UpdateProduct)
	api.DELETE("/products/:id", h.DeleteProduct)

	// Batches
	api.GET("/batches", h.ListBatches)
	api.GET("/batches/:id", h.GetBatch)
	api.DELETE("/batches/:id", h.DeleteBatch)
	api.POST("/batches/:id/activate", h.ActivateBatch)
	api.POST("/batches/:id/edit", h.EditBatch)

	// Working set (batch editing)
	api.POST("/batches/working", h.OpenWorkingSet)
	api.GET("/batches/working/orders", h.GetWorkingSet)
	api.POST("/batches/working/orders", h.AddWorkingOrder)
	api.DELETE("/batches/working/orders/:index", h.RemoveWorkingOrder)
	api.POST("/batches/working/save", h.SaveBatch)

	// Order list of the active batch
	api.GET("/orders", h.GetOrderPage)
	api.POST("/orders/page", h.Paginate)
	api.POST("/orders/:id/select", h.SelectOrder)
	api.POST("/orders/select-all", h.SelectAllOnPage)

	// Counting control
	api.POST("/counting/start", h.StartCounting)
	api.POST("/counting/pause", h.PauseCounting)
	api.POST("/counting/stop", h.StopCounting)
	api.POST("/counting/reset", h.ResetCounting)
	api.GET("/counting/status", h.GetCountingStatus)

	// Settings
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)
	api.POST("/settings/apply", h.ApplySettings)

	// History
	api.GET("/history", h.GetHistory)
	api.DELETE("/history", h.ClearHistory)

	// Device passthrough
	api.GET("/device/health", h.GetDeviceHealth)
	api.GET("/device/orders", h.GetDeviceOrders)
	api.GET("/device/bagtypes", h.GetDeviceBagTypes)
	api.GET("/device/history", h.GetDeviceHistory)
	api.POST("/device/remote/:button", h.SendRemoteButton)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	requestLog := logger.With("component", "http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			requestLog.Info("Request handled",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"remote", c.Request().RemoteAddr,
				"latency", time.Since(start).String(),
			)
			return err
		}
	}
}
