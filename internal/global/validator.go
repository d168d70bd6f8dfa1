package global

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	// Khởi tạo validator
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("rfm_segment", validateRfmSegment)
	_ = Validate.RegisterValidation("iso_date", validateIsoDate)
}

// validateNoXSS kiểm tra XSS trong các field text tự do (tên khách, tên file)
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"eval(",
		"document.cookie",
		"<iframe",
		"<object",
		"<embed",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateRfmSegment kiểm tra nhãn phân khúc thuộc bộ cố định tiếng Bồ Đào Nha
// (feed phân khúc do hệ marketing tính sẵn, xem ingest segmentation).
func validateRfmSegment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "VIP", "Frequente", "Promissor", "Novato", "Esfriando", "Inativo", "Não Classificado", "":
		return true
	}
	return false
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validateIsoDate kiểm tra định dạng ngày YYYY-MM-DD (dùng cho settings và query params)
func validateIsoDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return isoDatePattern.MatchString(value)
}
