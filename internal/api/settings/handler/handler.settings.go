// Package settingshdl - Handler API app settings.
package settingshdl

import (
	"fmt"

	basehdl "lavpop_bi/internal/api/base/handler"
	settingsdto "lavpop_bi/internal/api/settings/dto"
	settingsmodels "lavpop_bi/internal/api/settings/models"
	settingsvc "lavpop_bi/internal/api/settings/service"
	"lavpop_bi/internal/common"
	"lavpop_bi/internal/global"

	"github.com/gofiber/fiber/v3"
)

// SettingsHandler xử lý API settings.
type SettingsHandler struct {
	SettingsService *settingsvc.SettingsService
}

// NewSettingsHandler tạo SettingsHandler mới.
func NewSettingsHandler() (*SettingsHandler, error) {
	svc, err := settingsvc.NewSettingsService()
	if err != nil {
		return nil, fmt.Errorf("tạo SettingsService: %w", err)
	}
	return &SettingsHandler{SettingsService: svc}, nil
}

// HandleGetSettings xử lý GET /settings — settings hiện hành (có default).
func (h *SettingsHandler) HandleGetSettings(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		settings, err := h.SettingsService.Get(c.Context())
		basehdl.HandleResponse(c, settings, err)
		return nil
	})
}

// HandleUpdateSettings xử lý PUT /settings — cập nhật và invalidate cache.
func (h *SettingsHandler) HandleUpdateSettings(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input settingsdto.UpdateSettingsInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Body không đúng định dạng JSON", common.StatusBadRequest, err))
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Dữ liệu settings không hợp lệ: "+err.Error(), common.StatusBadRequest, err))
			return nil
		}

		settings, err := h.SettingsService.Update(c.Context(), &settingsmodels.AppSettings{
			CashbackPercent:   input.CashbackPercent,
			CashbackStartDate: input.CashbackStartDate,
			LostThresholdDays: input.LostThresholdDays,
		})
		basehdl.HandleResponse(c, settings, err)
		return nil
	})
}
