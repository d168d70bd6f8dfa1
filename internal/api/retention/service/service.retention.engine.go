package retsvc

import (
	"math"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

// EngineSettings gom mọi tham số của 1 lần tính: chương trình cashback và
// ngưỡng Lost tuyệt đối. Giá trị lấy từ app settings (có default).
type EngineSettings struct {
	CashbackPercent   float64
	CashbackStartDate time.Time
	LostThresholdDays int
}

// ComputeAnalytics là entry point của engine: fold 3 mảng input thành danh
// sách khách đã phân loại + object đầu ra tổng hợp. Thuần, deterministic,
// không I/O: cùng input → cùng output từng byte. Không raise lỗi — row hỏng
// chỉ đếm vào diagnostics.
func ComputeAnalytics(now time.Time, transactions, segmentation, registry []retmodels.Row, settings EngineSettings, diag Diagnostics) *retmodels.AnalyticsResult {
	if diag == nil {
		diag = NopDiagnostics()
	}

	segIndex := BuildSegmentationIndex(segmentation, diag)
	regIndex := BuildRegistryIndex(registry, diag)

	accs := AggregateTransactions(transactions, CashbackSettings{
		Percent:   settings.CashbackPercent,
		StartDate: settings.CashbackStartDate,
	}, diag)

	classifier := NewRiskClassifier(settings.LostThresholdDays)
	customers := FinalizeCustomers(now, accs, segIndex, regIndex, classifier)

	return buildResult(customers)
}

// buildResult gom số đếm + 4 danh sách từ danh sách khách đã phân loại.
func buildResult(customers []*retmodels.Customer) *retmodels.AnalyticsResult {
	result := &retmodels.AnalyticsResult{
		TotalCustomers: len(customers),
		All:            customers,
		Active:         []*retmodels.Customer{},
		Lost:           []*retmodels.Customer{},
		CampaignReady:  []*retmodels.Customer{},
	}

	for _, c := range customers {
		switch c.RiskLevel {
		case retmodels.RiskHealthy:
			result.HealthyCount++
		case retmodels.RiskMonitor:
			result.MonitorCount++
		case retmodels.RiskAtRisk:
			result.AtRiskCount++
		case retmodels.RiskChurning:
			result.ChurningCount++
		case retmodels.RiskNewCustomer:
			result.NewCustomerCount++
		}

		if c.RiskLevel == retmodels.RiskLost {
			result.LostCustomers++
			result.Lost = append(result.Lost, c)
			continue
		}

		result.ActiveCustomers++
		result.Active = append(result.Active, c)
		if c.HasValidPhone {
			result.ValidPhoneCount++
			result.CampaignReady = append(result.CampaignReady, c)
		} else {
			result.InvalidPhoneCount++
		}
	}

	if result.ActiveCustomers > 0 {
		result.HealthRate = roundPercent(float64(result.HealthyCount) / float64(result.ActiveCustomers) * 100)
		result.PhoneValidRate = roundPercent(float64(result.ValidPhoneCount) / float64(result.ActiveCustomers) * 100)
	}
	return result
}

// roundPercent làm tròn 1 chữ số thập phân cho các tỷ lệ %.
func roundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}
