// Package models - AppSettings thuộc domain settings (app_settings).
// Document duy nhất id "default": tham số runtime của engine retention.
package models

// AppSettingsID là _id cố định của document settings.
const AppSettingsID = "default"

// AppSettings lưu tham số có thể đổi runtime mà không cần deploy lại:
// chương trình cashback và ngưỡng Lost.
type AppSettings struct {
	ID string `json:"id" bson:"_id"`

	CashbackPercent   float64 `json:"cashbackPercent" bson:"cashbackPercent"`     // % trên gross
	CashbackStartDate string  `json:"cashbackStartDate" bson:"cashbackStartDate"` // YYYY-MM-DD
	LostThresholdDays int     `json:"lostThresholdDays" bson:"lostThresholdDays"`

	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Unix ms
}
