// Package router đăng ký các route thuộc domain settings.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	apirouter "lavpop_bi/internal/api/router"
	settingshdl "lavpop_bi/internal/api/settings/handler"
)

// Register đăng ký tất cả route settings lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := settingshdl.NewSettingsHandler()
	if err != nil {
		return fmt.Errorf("tạo SettingsHandler: %w", err)
	}

	// GET /settings — settings hiện hành (default khi chưa có document)
	apirouter.RegisterRouteWithMiddleware(v1, "/settings", "GET", "/", nil, handler.HandleGetSettings)
	// PUT /settings — cập nhật settings, invalidate cache
	apirouter.RegisterRouteWithMiddleware(v1, "/settings", "PUT", "/", nil, handler.HandleUpdateSettings)

	return nil
}
