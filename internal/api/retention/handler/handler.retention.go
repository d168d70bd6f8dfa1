// Package rethdl - Handler API retention analytics.
package rethdl

import (
	"fmt"
	"time"

	basehdl "lavpop_bi/internal/api/base/handler"
	retdto "lavpop_bi/internal/api/retention/dto"
	retsvc "lavpop_bi/internal/api/retention/service"
	"lavpop_bi/internal/common"
	"lavpop_bi/internal/global"

	"github.com/gofiber/fiber/v3"
)

// RetentionHandler xử lý API retention.
type RetentionHandler struct {
	RetentionService *retsvc.RetentionService
}

// NewRetentionHandler tạo RetentionHandler mới.
func NewRetentionHandler() (*RetentionHandler, error) {
	svc, err := retsvc.NewRetentionService()
	if err != nil {
		return nil, fmt.Errorf("tạo RetentionService: %w", err)
	}
	return &RetentionHandler{RetentionService: svc}, nil
}

// parseNowQuery đọc query now (YYYY-MM-DD); rỗng → zero time (service dùng time.Now).
func parseNowQuery(c fiber.Ctx) (time.Time, error) {
	var query retdto.AnalyticsQuery
	if err := c.Bind().Query(&query); err != nil {
		return time.Time{}, common.NewError(common.ErrCodeValidationInput, "Query không hợp lệ", common.StatusBadRequest, err)
	}
	if err := global.Validate.Struct(&query); err != nil {
		return time.Time{}, common.NewError(common.ErrCodeValidationInput, "Query now phải là ngày YYYY-MM-DD", common.StatusBadRequest, err)
	}
	if query.Now == "" {
		return time.Time{}, nil
	}
	now, err := time.Parse("2006-01-02", query.Now)
	if err != nil {
		return time.Time{}, common.NewError(common.ErrCodeValidationInput, "Query now phải là ngày YYYY-MM-DD", common.StatusBadRequest, err)
	}
	return now, nil
}

// HandleAnalytics xử lý GET /retention/analytics — object đầu ra đầy đủ.
func (h *RetentionHandler) HandleAnalytics(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		now, err := parseNowQuery(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		result, err := h.RetentionService.Analytics(c.Context(), now)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleRiskMap xử lý GET /retention/risk-map.
func (h *RetentionHandler) HandleRiskMap(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		now, err := parseNowQuery(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		points, err := h.RetentionService.RiskMap(c.Context(), now)
		basehdl.HandleResponse(c, points, err)
		return nil
	})
}

// HandleIntervalHistogram xử lý GET /retention/interval-histogram.
func (h *RetentionHandler) HandleIntervalHistogram(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		now, err := parseNowQuery(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		buckets, err := h.RetentionService.IntervalHistogram(c.Context(), now)
		basehdl.HandleResponse(c, buckets, err)
		return nil
	})
}

// HandleCohorts xử lý GET /retention/cohorts — tỷ lệ quay lại 30/60/90 ngày.
func (h *RetentionHandler) HandleCohorts(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		now, err := parseNowQuery(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		rates, err := h.RetentionService.Cohorts(c.Context(), now)
		basehdl.HandleResponse(c, rates, err)
		return nil
	})
}

// HandleAcquisitionTrend xử lý GET /retention/acquisition-trend?days=N.
func (h *RetentionHandler) HandleAcquisitionTrend(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var query retdto.AcquisitionTrendQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Query không hợp lệ", common.StatusBadRequest, err))
			return nil
		}
		if err := global.Validate.Struct(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Query không hợp lệ: "+err.Error(), common.StatusBadRequest, err))
			return nil
		}

		var now time.Time
		if query.Now != "" {
			parsed, err := time.Parse("2006-01-02", query.Now)
			if err != nil {
				basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationInput, "Query now phải là ngày YYYY-MM-DD", common.StatusBadRequest, err))
				return nil
			}
			now = parsed
		}
		if query.Days == 0 {
			query.Days = 30
		}

		trend, err := h.RetentionService.AcquisitionTrend(c.Context(), now, query.Days)
		basehdl.HandleResponse(c, trend, err)
		return nil
	})
}

// HandleRecompute xử lý POST /retention/recompute — tính lại và lưu snapshot.
func (h *RetentionHandler) HandleRecompute(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		now, err := parseNowQuery(c)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
		snapshot, err := h.RetentionService.Recompute(c.Context(), now)
		basehdl.HandleResponse(c, snapshot, err)
		return nil
	})
}

// HandleLatestSnapshot xử lý GET /retention/snapshot — snapshot mới nhất.
func (h *RetentionHandler) HandleLatestSnapshot(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		snapshot, err := h.RetentionService.LatestSnapshot(c.Context())
		basehdl.HandleResponse(c, snapshot, err)
		return nil
	})
}
