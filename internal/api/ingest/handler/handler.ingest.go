// Package ingesthdl - Handler API upload file CSV.
package ingesthdl

import (
	"context"
	"fmt"
	"io"
	"strconv"

	basehdl "lavpop_bi/internal/api/base/handler"
	ingestdto "lavpop_bi/internal/api/ingest/dto"
	ingestvc "lavpop_bi/internal/api/ingest/service"
	"lavpop_bi/internal/common"
	"lavpop_bi/internal/global"
	"lavpop_bi/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// maxUploadBytes chặn file quá lớn trước khi đọc vào memory (20 MB).
const maxUploadBytes = 20 << 20

// IngestHandler xử lý API upload.
type IngestHandler struct {
	IngestService *ingestvc.IngestService
}

// NewIngestHandler tạo IngestHandler mới.
func NewIngestHandler() (*IngestHandler, error) {
	svc, err := ingestvc.NewIngestService()
	if err != nil {
		return nil, fmt.Errorf("tạo IngestService: %w", err)
	}
	return &IngestHandler{IngestService: svc}, nil
}

// readUploadedFile đọc file từ form field "file", giới hạn kích thước.
func readUploadedFile(c fiber.Ctx) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, common.NewError(common.ErrCodeValidationInput, "Thiếu file upload (form field 'file')", common.StatusBadRequest, err)
	}
	if fileHeader.Size > maxUploadBytes {
		return "", nil, common.NewError(common.ErrCodeValidationInput, "File vượt quá giới hạn 20MB", common.StatusBadRequest, nil)
	}
	if err := global.Validate.Var(fileHeader.Filename, "no_xss"); err != nil {
		return "", nil, common.NewError(common.ErrCodeValidationInput, "Tên file chứa ký tự không hợp lệ", common.StatusBadRequest, err)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", nil, common.NewError(common.ErrCodeIngest, "Không mở được file upload", common.StatusInternalServerError, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, common.NewError(common.ErrCodeIngest, "Không đọc được file upload", common.StatusInternalServerError, err)
	}
	return fileHeader.Filename, data, nil
}

// handleUpload dùng chung cho các endpoint upload, chỉ khác hàm import.
func (h *IngestHandler) handleUpload(c fiber.Ctx, upload func(ctx context.Context, fileName string, data []byte) (*ingestdto.UploadResult, error)) error {
	return basehdl.SafeHandler(c, func() error {
		fileName, data, err := readUploadedFile(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		result, err := upload(c.Context(), fileName, data)
		if err == nil {
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"fileType": result.FileType,
				"fileName": result.FileName,
				"inserted": result.Inserted,
				"updated":  result.Updated,
				"skipped":  result.Skipped,
			}).Info("import file hoàn tất")
		}
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleUpload xử lý POST /ingest/upload — tự nhận diện loại file theo header.
func (h *IngestHandler) HandleUpload(c fiber.Ctx) error {
	return h.handleUpload(c, h.IngestService.Upload)
}

// HandleUploadSales xử lý POST /ingest/sales.
func (h *IngestHandler) HandleUploadSales(c fiber.Ctx) error {
	return h.handleUpload(c, h.IngestService.UploadSales)
}

// HandleUploadCustomers xử lý POST /ingest/customers.
func (h *IngestHandler) HandleUploadCustomers(c fiber.Ctx) error {
	return h.handleUpload(c, h.IngestService.UploadCustomers)
}

// HandleUploadSegmentation xử lý POST /ingest/segmentation.
func (h *IngestHandler) HandleUploadSegmentation(c fiber.Ctx) error {
	return h.handleUpload(c, h.IngestService.UploadSegmentation)
}

// HandleListHistory xử lý GET /ingest/history — lịch sử upload, mới nhất trước.
// Query: limit (mặc định 50, tối đa 200).
func (h *IngestHandler) HandleListHistory(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		items, err := h.IngestService.ListHistory(c.Context(), limit)
		basehdl.HandleResponse(c, items, err)
		return nil
	})
}
