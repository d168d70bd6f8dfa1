package retsvc

import (
	"math"
	"sort"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

// 4 projection read-only trên danh sách khách đã phân loại (cohort đọc thẳng
// từ row giao dịch vì ngày ghé per-khách đã bị vứt sau finalize).
// Projection không feed lẫn nhau.

// Tham số histogram chu kỳ ghé.
const (
	histogramBinWidth = 10  // ngày / bin
	histogramCapDays  = 120 // giá trị vượt trần rơi vào bin cuối

	histogramSafeBelow    = 30 // bin bắt đầu < 30 → Safe
	histogramWarningBelow = 60 // bin bắt đầu < 60 → Warning, còn lại Danger
)

// Tham số cửa sổ cohort.
const (
	cohortActiveWindowDays = 15 // cửa sổ active kết thúc ĐÚNG tại mốc lookback
	cohortReturnWindowDays = 30 // cửa sổ return bắt đầu từ mốc+1
)

// CohortLookbacks là các mốc lookback chuẩn của dashboard.
var CohortLookbacks = []int{30, 60, 90}

// BuildRiskMap chiếu mỗi khách thành 1 điểm (x=ngày vắng, y=tổng net,
// radius=số lần ghé). Projection thuần, không lọc.
func BuildRiskMap(customers []*retmodels.Customer) []retmodels.RiskMapPoint {
	points := make([]retmodels.RiskMapPoint, 0, len(customers))
	for _, c := range customers {
		points = append(points, retmodels.RiskMapPoint{
			Doc:       c.Doc,
			Name:      c.Name,
			X:         c.DaysSinceLastVisit,
			Y:         c.TotalNet,
			Radius:    c.Visits,
			RiskLevel: c.RiskLevel,
			Segment:   c.Segment,
			Phone:     c.Phone,
		})
	}
	return points
}

// BuildIntervalHistogram gom khách có avg chu kỳ dương vào bin 10 ngày,
// trần 120 (vượt trần → bin cuối). Mỗi bucket có count + danh sách CPF góp mặt.
func BuildIntervalHistogram(customers []*retmodels.Customer) []retmodels.IntervalBucket {
	buckets := make([]retmodels.IntervalBucket, 0, histogramCapDays/histogramBinWidth)
	for start := 0; start < histogramCapDays; start += histogramBinWidth {
		label := retmodels.HistogramLabelDanger
		if start < histogramSafeBelow {
			label = retmodels.HistogramLabelSafe
		} else if start < histogramWarningBelow {
			label = retmodels.HistogramLabelWarning
		}
		buckets = append(buckets, retmodels.IntervalBucket{
			Start: start,
			End:   start + histogramBinWidth,
			Label: label,
			Docs:  []string{},
		})
	}

	for _, c := range customers {
		if c.AvgDaysBetween <= 0 {
			continue
		}
		idx := int(math.Floor(c.AvgDaysBetween / histogramBinWidth))
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		buckets[idx].Count++
		buckets[idx].Docs = append(buckets[idx].Docs, c.Doc)
	}
	return buckets
}

// BuildRetentionCohorts tính tỷ lệ quay lại cho các mốc lookback.
// Mốc = now − lookback ngày. Active window 15 ngày KẾT THÚC TẠI mốc (bao gồm
// mốc); return window 30 ngày bắt đầu từ mốc+1 — hai cửa sổ không chồng lấn,
// nên 1 lần ghé đúng ngày mốc chỉ đếm vào active, không bao giờ đếm cả hai.
// Không ai eligible → rate 0 thay vì chia cho 0.
func BuildRetentionCohorts(now time.Time, transactions []retmodels.Row, lookbacks []int) []retmodels.CohortRate {
	if len(lookbacks) == 0 {
		lookbacks = CohortLookbacks
	}

	// Parse 1 lần: CPF → tập ngày ghé (ngày lịch, UTC)
	visitsByDoc := make(map[string][]time.Time)
	for _, row := range transactions {
		doc, ok := NormalizeCPF(ExtractField(row, FieldDoc))
		if !ok {
			continue
		}
		t, ok := ParseBRDate(ExtractField(row, FieldDate))
		if !ok {
			continue
		}
		visitsByDoc[doc] = append(visitsByDoc[doc], truncateToDay(t))
	}

	rates := make([]retmodels.CohortRate, 0, len(lookbacks))
	today := truncateToDay(now)

	for _, lookback := range lookbacks {
		boundary := today.AddDate(0, 0, -lookback)
		activeStart := boundary.AddDate(0, 0, -(cohortActiveWindowDays - 1))
		returnStart := boundary.AddDate(0, 0, 1)
		returnEnd := boundary.AddDate(0, 0, cohortReturnWindowDays)

		var eligible, returned int
		for _, visits := range visitsByDoc {
			isEligible, hasReturned := false, false
			for _, v := range visits {
				if !v.Before(activeStart) && !v.After(boundary) {
					isEligible = true
				}
				if !v.Before(returnStart) && !v.After(returnEnd) {
					hasReturned = true
				}
			}
			if isEligible {
				eligible++
				if hasReturned {
					returned++
				}
			}
		}

		rate := 0
		if eligible > 0 {
			rate = int(math.Round(float64(returned) / float64(eligible) * 100))
		}
		rates = append(rates, retmodels.CohortRate{
			LookbackDays: lookback,
			Eligible:     eligible,
			Returned:     returned,
			Rate:         rate,
		})
	}
	return rates
}

// BuildAcquisitionTrend gom khách theo ngày lịch của lần ghé ĐẦU TIÊN trong
// đời, chỉ đếm khách có first visit rơi vào khoảng [now-days+1, now].
// Mỗi ngày 1 điểm, ngày không có khách mới → 0.
func BuildAcquisitionTrend(now time.Time, customers []*retmodels.Customer, days int) retmodels.AcquisitionTrend {
	if days <= 0 {
		days = 30
	}
	today := truncateToDay(now)
	rangeStart := today.AddDate(0, 0, -(days - 1))

	countByDay := make(map[string]int)
	newDocs := []string{}
	for _, c := range customers {
		if c.FirstVisit.IsZero() {
			continue
		}
		first := truncateToDay(c.FirstVisit)
		if first.Before(rangeStart) || first.After(today) {
			continue
		}
		countByDay[dayKey(first)]++
		newDocs = append(newDocs, c.Doc)
	}
	sort.Strings(newDocs)

	points := make([]retmodels.AcquisitionPoint, 0, days)
	for d := rangeStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := dayKey(d)
		points = append(points, retmodels.AcquisitionPoint{
			Date:  key,
			Count: countByDay[key],
		})
	}
	return retmodels.AcquisitionTrend{Points: points, NewDocs: newDocs}
}
