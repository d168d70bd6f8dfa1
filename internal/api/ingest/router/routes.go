// Package router đăng ký các route thuộc domain ingest.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	ingesthdl "lavpop_bi/internal/api/ingest/handler"
	apirouter "lavpop_bi/internal/api/router"
)

// Register đăng ký tất cả route ingest lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := ingesthdl.NewIngestHandler()
	if err != nil {
		return fmt.Errorf("tạo IngestHandler: %w", err)
	}

	// POST /ingest/upload — tự nhận diện loại file theo header CSV
	apirouter.RegisterRouteWithMiddleware(v1, "/ingest", "POST", "/upload", nil, handler.HandleUpload)
	// POST /ingest/sales | /customers | /segmentation — ép loại file
	apirouter.RegisterRouteWithMiddleware(v1, "/ingest", "POST", "/sales", nil, handler.HandleUploadSales)
	apirouter.RegisterRouteWithMiddleware(v1, "/ingest", "POST", "/customers", nil, handler.HandleUploadCustomers)
	apirouter.RegisterRouteWithMiddleware(v1, "/ingest", "POST", "/segmentation", nil, handler.HandleUploadSegmentation)
	// GET /ingest/history — lịch sử upload
	apirouter.RegisterRouteWithMiddleware(v1, "/ingest", "GET", "/history", nil, handler.HandleListHistory)

	return nil
}
