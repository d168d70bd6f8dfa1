// Package dto - query input cho API retention.
package dto

// AnalyticsQuery là query chung: now override (YYYY-MM-DD) để chạy
// reproducible trên cùng 1 mốc thời gian.
type AnalyticsQuery struct {
	Now string `query:"now" validate:"omitempty,iso_date"`
}

// AcquisitionTrendQuery là query của GET /retention/acquisition-trend.
type AcquisitionTrendQuery struct {
	Now  string `query:"now" validate:"omitempty,iso_date"`
	Days int    `query:"days" validate:"omitempty,min=1,max=365"`
}
