package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	basehdl "lavpop_bi/internal/api/base/handler"
	ingestrouter "lavpop_bi/internal/api/ingest/router"
	"lavpop_bi/internal/api/middleware"
	retrouter "lavpop_bi/internal/api/retention/router"
	"lavpop_bi/internal/api/router"
	settingsrouter "lavpop_bi/internal/api/settings/router"
	"lavpop_bi/internal/common"
	"lavpop_bi/internal/global"
	"lavpop_bi/internal/logger"
)

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		// Cấu hình cơ bản
		AppName:       "Lavpop BI API",
		ServerHeader:  "Lavpop BI API",
		StrictRouting: true,
		CaseSensitive: true,
		UnescapePath:  true,

		// Performance — BodyLimit 25MB để nhận file CSV upload
		BodyLimit:       25 * 1024 * 1024,
		Concurrency:     256 * 1024,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		// Timeout
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // recompute trên dataset lớn cần thời gian
		IdleTimeout:  120 * time.Second,

		// Error handling thống nhất format {code, message, status} qua
		// middleware.HandleErrorResponse — envelope lỗi chỉ định nghĩa 1 chỗ
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			errorCode := common.ErrCodeInternalServer

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
				switch code {
				case fiber.StatusBadRequest:
					errorCode = common.ErrCodeValidationInput
				case fiber.StatusNotFound, fiber.StatusConflict:
					errorCode = common.ErrCodeDatabaseQuery
				}
			}

			logger.WithRequest(c).WithFields(map[string]interface{}{
				"code":      code,
				"errorCode": errorCode.Code,
				"message":   message,
			}).Error("Request error")

			middleware.HandleErrorResponse(c, common.NewError(errorCode, message, code, nil))
			return nil
		},
	})

	// 1. Request ID — trace từng request qua log
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	// 2. CORS — đặt trước các middleware khác để xử lý preflight
	corsOrigins := global.ServerConfig.CORS_Origins
	var allowOrigins []string
	if corsOrigins == "*" {
		allowOrigins = []string{"*"}
	} else {
		allowOrigins = strings.Split(corsOrigins, ",")
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Request-ID",
			"X-Requested-With",
		},
		AllowCredentials: global.ServerConfig.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 4. Rate limiting theo IP
	if global.ServerConfig.RateLimit_Enabled && global.ServerConfig.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        global.ServerConfig.RateLimit_Max,
			Expiration: time.Duration(global.ServerConfig.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				middleware.HandleErrorResponse(c, common.NewError(
					common.ErrCodeBusinessOperation,
					"Quá nhiều yêu cầu, vui lòng thử lại sau",
					common.StatusTooManyRequests,
					nil,
				))
				return nil
			},
			Next: func(c fiber.Ctx) bool {
				// Bỏ qua rate limit cho health check và preflight
				return c.Path() == "/api/v1/system/health" || c.Method() == "OPTIONS"
			},
		}))
	}

	// 5. Recover — panic trong handler không giết server
	app.Use(recover.New())

	// 6. Request logger
	app.Use(middleware.RequestLoggerMiddleware())

	// Đăng ký routes theo domain
	if err := router.SetupRoutes(app,
		retrouter.Register,
		ingestrouter.Register,
		settingsrouter.Register,
		registerSystemRoutes,
	); err != nil {
		logger.GetAppLogger().Fatalf("Failed to setup routes: %v", err)
	}

	return app
}

// registerSystemRoutes đăng ký route system (health check).
func registerSystemRoutes(v1 fiber.Router, r *router.Router) error {
	systemHandler := basehdl.NewSystemHandler()
	router.RegisterRouteWithMiddleware(v1, "/system", "GET", "/health", nil, systemHandler.HandleHealth)
	return nil
}
