// Package models - các kiểu kết quả của engine retention: object tổng hợp
// và 4 projection phân tích (risk map, histogram, cohort, acquisition trend).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsResult là object đầu ra duy nhất của engine: số đếm tổng hợp +
// 4 danh sách khách. Downstream (dashboard, export, messaging) chỉ đọc,
// không có API mutation ngược về input.
type AnalyticsResult struct {
	TotalCustomers   int `json:"totalCustomers" bson:"totalCustomers"`
	ActiveCustomers  int `json:"activeCustomers" bson:"activeCustomers"`
	LostCustomers    int `json:"lostCustomers" bson:"lostCustomers"`
	HealthyCount     int `json:"healthyCount" bson:"healthyCount"`
	MonitorCount     int `json:"monitorCount" bson:"monitorCount"`
	AtRiskCount      int `json:"atRiskCount" bson:"atRiskCount"`
	ChurningCount    int `json:"churningCount" bson:"churningCount"`
	NewCustomerCount int `json:"newCustomerCount" bson:"newCustomerCount"`

	// HealthRate = healthy / active (%); 0 khi không có khách active
	HealthRate float64 `json:"healthRate" bson:"healthRate"`

	// Thống kê điện thoại hợp lệ (phục vụ campaign)
	ValidPhoneCount   int     `json:"validPhoneCount" bson:"validPhoneCount"`
	InvalidPhoneCount int     `json:"invalidPhoneCount" bson:"invalidPhoneCount"`
	PhoneValidRate    float64 `json:"phoneValidRate" bson:"phoneValidRate"`

	All           []*Customer `json:"all" bson:"all"`
	Active        []*Customer `json:"active" bson:"active"`
	Lost          []*Customer `json:"lost" bson:"lost"`
	CampaignReady []*Customer `json:"campaignReady" bson:"campaignReady"` // active + phone hợp lệ
}

// RiskMapPoint là 1 điểm trên bản đồ rủi ro:
// x = ngày từ lần ghé cuối, y = tổng chi tiêu net, radius = số lần ghé.
type RiskMapPoint struct {
	Doc       string  `json:"doc" bson:"doc"`
	Name      string  `json:"name" bson:"name"`
	X         int     `json:"x" bson:"x"`
	Y         float64 `json:"y" bson:"y"`
	Radius    int     `json:"radius" bson:"radius"`
	RiskLevel string  `json:"riskLevel" bson:"riskLevel"`
	Segment   string  `json:"segment" bson:"segment"`
	Phone     string  `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Nhãn bucket histogram theo điểm đầu bin: <30 Safe, <60 Warning, còn lại Danger.
const (
	HistogramLabelSafe    = "Safe"
	HistogramLabelWarning = "Warning"
	HistogramLabelDanger  = "Danger"
)

// IntervalBucket là 1 bin 10 ngày của histogram chu kỳ ghé tiệm.
// Bin cuối (110-120) nhận luôn các giá trị vượt trần 120.
type IntervalBucket struct {
	Start int      `json:"start" bson:"start"`
	End   int      `json:"end" bson:"end"`
	Label string   `json:"label" bson:"label"`
	Count int      `json:"count" bson:"count"`
	Docs  []string `json:"docs" bson:"docs"`
}

// CohortRate là tỷ lệ quay lại cho 1 mốc lookback (30/60/90 ngày).
// Cửa sổ active 15 ngày kết thúc ĐÚNG tại mốc; cửa sổ return 30 ngày bắt đầu
// từ mốc+1 — hai cửa sổ không chồng lấn.
type CohortRate struct {
	LookbackDays int `json:"lookbackDays" bson:"lookbackDays"`
	Eligible     int `json:"eligible" bson:"eligible"`
	Returned     int `json:"returned" bson:"returned"`
	Rate         int `json:"rate" bson:"rate"` // phần trăm nguyên, 0 khi không ai eligible
}

// AcquisitionPoint là số khách mới theo từng ngày (zero-filled).
type AcquisitionPoint struct {
	Date  string `json:"date" bson:"date"` // YYYY-MM-DD
	Count int    `json:"count" bson:"count"`
}

// AcquisitionTrend là chuỗi khách mới theo ngày trong khoảng yêu cầu.
type AcquisitionTrend struct {
	Points  []AcquisitionPoint `json:"points" bson:"points"`
	NewDocs []string           `json:"newDocs" bson:"newDocs"`
}

// RetentionSnapshot lưu kết quả recompute vào Mongo để dashboard đọc lại
// mà không phải tính toán lại (retention_snapshots).
type RetentionSnapshot struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ComputedAt int64              `json:"computedAt" bson:"computedAt"` // Unix ms
	Now        int64              `json:"now" bson:"now"`               // mốc "hiện tại" dùng khi tính (Unix ms)
	Result     *AnalyticsResult   `json:"result" bson:"result"`
	DurationMs int64              `json:"durationMs" bson:"durationMs"`
}
