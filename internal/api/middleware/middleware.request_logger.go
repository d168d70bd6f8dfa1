package middleware

import (
	"time"

	"lavpop_bi/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// RequestLoggerMiddleware log mỗi request sau khi xử lý xong: method, path, status, duration.
// Chỉ log ở mức Info cho request lỗi (>=400), còn lại log Debug để tránh nhiễu log production.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		entry := logger.WithRequest(c).WithFields(map[string]interface{}{
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if c.Response().StatusCode() >= 400 {
			entry.Info("request completed with error status")
		} else {
			entry.Debug("request completed")
		}
		return err
	}
}
