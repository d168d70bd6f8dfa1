// Package dto - input/output cho API settings.
package dto

// UpdateSettingsInput là body của PUT /settings.
type UpdateSettingsInput struct {
	CashbackPercent   float64 `json:"cashbackPercent" validate:"required,gt=0,lte=100"`
	CashbackStartDate string  `json:"cashbackStartDate" validate:"required,iso_date"`
	LostThresholdDays int     `json:"lostThresholdDays" validate:"required,min=1,max=365"`
}
