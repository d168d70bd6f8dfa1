// Package router đăng ký các route thuộc domain retention.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	rethdl "lavpop_bi/internal/api/retention/handler"
	apirouter "lavpop_bi/internal/api/router"
)

// Register đăng ký tất cả route retention lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := rethdl.NewRetentionHandler()
	if err != nil {
		return fmt.Errorf("tạo RetentionHandler: %w", err)
	}

	// GET /retention/analytics — object đầu ra đầy đủ (query now=YYYY-MM-DD để chạy reproducible)
	apirouter.RegisterRouteWithMiddleware(v1, "/retention", "GET", "/analytics", nil, handler.HandleAnalytics)
	// 4 projection phân tích
	apirouter.RegisterRouteWithMiddleware(v1, "/retention", "GET", "/risk-map", nil, handler.HandleRiskMap)
	apirouter.RegisterRouteWithMiddleware(v1, "/retention", "GET", "/interval-histogram", nil, handler.HandleIntervalHistogram)
	apirouter.RegisterRouteWithMiddleware(v1, "/retention", "GET", "/cohorts", nil, handler.HandleCohorts)
	apirouter.RegisterRouteWithMiddleware(v1, "/retention", "GET", "/acquisition-trend", nil, handler.HandleAcquisitionTrend)
	// Snapshot cho dashboard
	apirouter.RegisterRouteWithMiddleware(v1, "/retention", "POST", "/recompute", nil, handler.HandleRecompute)
	apirouter.RegisterRouteWithMiddleware(v1, "/retention", "GET", "/snapshot", nil, handler.HandleLatestSnapshot)

	return nil
}
