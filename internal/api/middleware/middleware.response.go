package middleware

import (
	"errors"

	"lavpop_bi/internal/common"

	"github.com/gofiber/fiber/v3"
)

// JSONResponse trả về JSON response với charset=utf-8 (tên khách, nhãn phân
// khúc tiếng Bồ có dấu cần encoding đúng).
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// HandleErrorResponse ghi envelope lỗi chuẩn cho client. Dùng chung cho
// ErrorHandler và limiter của server (fiber config chạy ngoài router nên
// không đi qua basehdl.HandleResponse được).
func HandleErrorResponse(c fiber.Ctx, err error) {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"details": customErr.Details,
			"status":  "error",
		})
		return
	}
	// Nếu không phải custom error, trả về internal server error
	JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": err.Error(),
		"status":  "error",
	})
}
