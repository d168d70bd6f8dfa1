// Package models - Customer thuộc domain retention.
// Bản ghi khách hàng được dựng lại đầy đủ mỗi lần tính toán (full recompute),
// key theo CPF đã chuẩn hóa; không giữ identity giữa các lần chạy.
package models

import "time"

// Row là bản ghi lỏng theo tên cột. Tên cột khác nhau giữa 3 nguồn
// (giao dịch POS, phân khúc marketing, sổ đăng ký khách) nên mọi truy cập
// field đi qua bảng alias trong service.
type Row map[string]string

// Mức rủi ro churn — đúng 6 trạng thái, do Risk Classifier gán.
const (
	RiskHealthy     = "Healthy"
	RiskMonitor     = "Monitor"
	RiskAtRisk      = "At Risk"
	RiskChurning    = "Churning"
	RiskNewCustomer = "New Customer"
	RiskLost        = "Lost"
)

// Phân khúc RFM (gán từ feed marketing bên ngoài, không tính ở đây).
const (
	SegmentVIP          = "VIP"
	SegmentFrequente    = "Frequente"
	SegmentPromissor    = "Promissor"
	SegmentNovato       = "Novato"
	SegmentEsfriando    = "Esfriando"
	SegmentInativo      = "Inativo"
	SegmentUnclassified = "Não Classificado"
)

// Customer là thực thể trung tâm: kết quả gộp mọi giao dịch của một CPF,
// đã merge dữ liệu phân khúc + sổ đăng ký và gán mức rủi ro.
type Customer struct {
	Doc  string `json:"doc" bson:"doc"`
	Name string `json:"name" bson:"name"`

	// Điện thoại: raw từ nguồn + dạng chuẩn hóa kèm cờ hợp lệ
	Phone           string `json:"phone,omitempty" bson:"phone,omitempty"`
	NormalizedPhone string `json:"normalizedPhone,omitempty" bson:"normalizedPhone,omitempty"`
	HasValidPhone   bool   `json:"hasValidPhone" bson:"hasValidPhone"`
	Email           string `json:"email,omitempty" bson:"email,omitempty"`

	// Lịch sử ghé tiệm
	TransactionCount   int       `json:"transactionCount" bson:"transactionCount"`
	Visits             int       `json:"visits" bson:"visits"` // số ngày ghé distinct, luôn <= TransactionCount
	FirstVisit         time.Time `json:"firstVisit" bson:"firstVisit"`
	LastVisit          time.Time `json:"lastVisit" bson:"lastVisit"`
	AvgDaysBetween     float64   `json:"avgDaysBetween" bson:"avgDaysBetween"` // 0 = chưa xác định (< 2 khoảng cách dương)
	DaysSinceLastVisit int       `json:"daysSinceLastVisit" bson:"daysSinceLastVisit"`
	ServicesPerVisit   float64   `json:"servicesPerVisit" bson:"servicesPerVisit"`

	// Tiền
	TotalGross    float64 `json:"totalGross" bson:"totalGross"`
	TotalNet      float64 `json:"totalNet" bson:"totalNet"`
	TotalCashback float64 `json:"totalCashback" bson:"totalCashback"`

	// Cơ cấu dịch vụ giặt/sấy + nạp ví
	WashCount     int     `json:"washCount" bson:"washCount"`
	DryCount      int     `json:"dryCount" bson:"dryCount"`
	WashRevenue   float64 `json:"washRevenue" bson:"washRevenue"`
	DryRevenue    float64 `json:"dryRevenue" bson:"dryRevenue"`
	RechargeCount int     `json:"rechargeCount" bson:"rechargeCount"` // số lần nạp ví (tín hiệu gắn bó với ví)

	// Merge từ feed phân khúc + sổ đăng ký
	Segment           string    `json:"segment" bson:"segment"`
	WalletBalance     float64   `json:"walletBalance" bson:"walletBalance"`
	RegistrationDate  time.Time `json:"registrationDate,omitempty" bson:"registrationDate,omitempty"`
	LastPurchaseDate  time.Time `json:"lastPurchaseDate,omitempty" bson:"lastPurchaseDate,omitempty"`
	LifetimePurchases int       `json:"lifetimePurchases" bson:"lifetimePurchases"`
	LifetimeSpent     float64   `json:"lifetimeSpent" bson:"lifetimeSpent"`

	// Kết quả phân loại rủi ro
	RiskLevel        string  `json:"riskLevel" bson:"riskLevel"`
	ReturnLikelihood float64 `json:"returnLikelihood" bson:"returnLikelihood"` // luôn trong [0,100]
	DaysOverdue      float64 `json:"daysOverdue" bson:"daysOverdue"`
}
