package retsvc

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

// Ngưỡng mặc định của mô hình rủi ro.
const (
	// DefaultLostThresholdDays là ngưỡng Lost tuyệt đối: quá số ngày này kể từ
	// lần ghé cuối thì luôn Lost, bất kể chu kỳ riêng của khách.
	DefaultLostThresholdDays = 60

	// Ngưỡng band likelihood sau khi nhân hệ số phân khúc
	likelihoodHealthy = 60
	likelihoodMonitor = 30
	likelihoodAtRisk  = 15

	// Likelihood cố định cho các rule không dùng mô hình tỷ lệ
	likelihoodNewCustomer = 50
	likelihoodFallback    = 40
)

// segmentMultipliers là hệ số thưởng likelihood theo phân khúc RFM:
// phân khúc giá trị cao > 1, phân khúc nguội/ngủ đông < 1, không rõ = 1.
var segmentMultipliers = map[string]float64{
	retmodels.SegmentVIP:       1.2,
	retmodels.SegmentFrequente: 1.1,
	retmodels.SegmentPromissor: 1.05,
	retmodels.SegmentNovato:    1.0,
	retmodels.SegmentEsfriando: 0.8,
	retmodels.SegmentInativo:   0.5,
}

// SegmentMultiplier trả về hệ số của phân khúc; phân khúc lạ/rỗng → 1.0.
func SegmentMultiplier(segment string) float64 {
	if m, ok := segmentMultipliers[segment]; ok {
		return m
	}
	return 1.0
}

// SegmentationInfo là 1 dòng đã parse từ feed phân khúc, key theo CPF.
type SegmentationInfo struct {
	Segment     string
	Name        string
	Phone       string
	LastContact time.Time
}

// RegistryInfo là 1 dòng đã parse từ sổ đăng ký khách, key theo CPF.
type RegistryInfo struct {
	Name              string
	Phone             string
	Email             string
	WalletBalance     float64
	RegistrationDate  time.Time
	LastPurchaseDate  time.Time
	LifetimePurchases int
	LifetimeSpent     float64
}

// BuildSegmentationIndex dựng bảng lookup CPF → phân khúc từ feed marketing.
// Row thiếu CPF bị bỏ qua; nhãn ngoài bộ cố định giữ nguyên (hệ số sẽ là 1.0).
func BuildSegmentationIndex(rows []retmodels.Row, diag Diagnostics) map[string]SegmentationInfo {
	if diag == nil {
		diag = NopDiagnostics()
	}
	index := make(map[string]SegmentationInfo)
	for _, row := range rows {
		doc, ok := NormalizeCPF(ExtractField(row, FieldDoc))
		if !ok {
			diag.Count(DiagRowsMissingDoc, 1)
			continue
		}
		info := SegmentationInfo{
			Segment: firstNonEmpty(row["Segmento"], row["segment"], row["Segment"]),
			Name:    ExtractField(row, FieldName),
			Phone:   ExtractField(row, FieldPhone),
		}
		if raw := firstNonEmpty(row["Ultimo_Contato"], row["last_contact"]); raw != "" {
			if t, ok := ParseBRDate(raw); ok {
				info.LastContact = t
			}
		}
		index[doc] = info
	}
	diag.Gauge(DiagSegmentationIndex, len(index))
	return index
}

// BuildRegistryIndex dựng bảng lookup CPF → profile sổ đăng ký.
func BuildRegistryIndex(rows []retmodels.Row, diag Diagnostics) map[string]RegistryInfo {
	if diag == nil {
		diag = NopDiagnostics()
	}
	index := make(map[string]RegistryInfo)
	for _, row := range rows {
		doc, ok := NormalizeCPF(ExtractField(row, FieldDoc))
		if !ok {
			diag.Count(DiagRowsMissingDoc, 1)
			continue
		}
		info := RegistryInfo{
			Name:          ExtractField(row, FieldName),
			Phone:         ExtractField(row, FieldPhone),
			Email:         strings.TrimSpace(row["Email"]),
			WalletBalance: ParseBRNumber(firstNonEmpty(row["Saldo_Carteira"], row["wallet_balance"])),
			LifetimeSpent: ParseBRNumber(firstNonEmpty(row["Total_Compras"], row["total_spent"])),
		}
		if raw := firstNonEmpty(row["Quantidade_Compras"], row["transaction_count"]); raw != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				info.LifetimePurchases = n
			}
		}
		if t, ok := ParseBRDate(firstNonEmpty(row["Data_Cadastro"], row["registration_date"])); ok {
			info.RegistrationDate = t
		}
		if t, ok := ParseBRDate(firstNonEmpty(row["Data_Ultima_Compra"], row["last_purchase_date"])); ok {
			info.LastPurchaseDate = t
		}
		index[doc] = info
	}
	diag.Gauge(DiagRegistryIndex, len(index))
	return index
}

// placeholderName sinh tên hiển thị tạm từ 4 số cuối CPF khi nguồn nào cũng
// không có tên. Tên thật từ sổ đăng ký/phân khúc sẽ đè lên placeholder.
func placeholderName(doc string) string {
	if len(doc) >= 4 {
		return "Cliente " + doc[len(doc)-4:]
	}
	return "Cliente " + doc
}

// isPlaceholderName nhận diện tên auto-generate (cho phép override).
func isPlaceholderName(name string) bool {
	return name == "" || strings.HasPrefix(name, "Cliente ")
}

// RiskClassifier gán mức rủi ro theo decision list có thứ tự cố định,
// rule đầu tiên khớp thì thắng:
//
//  1. Lost override: quá ngưỡng tuyệt đối → Lost, likelihood 0.
//  2. Khách mới: đúng 1 giao dịch → New Customer, likelihood 50.
//  3. Mô hình tỷ lệ theo chu kỳ riêng: ratio = daysSince/avg,
//     likelihood = exp(-max(0, ratio-1))*100 × hệ số phân khúc, clamp 100.
//  4. Fallback: >1 giao dịch nhưng không có avg (toàn ghé cùng ngày)
//     → Monitor, likelihood 40.
//
// Ngưỡng Lost tuyệt đối chặn khách thật sự bỏ đi; mô hình tỷ lệ cho phép
// khách chu kỳ ngắn bị cảnh báo sớm hơn nhiều so với khách chu kỳ dài dù
// cùng số ngày vắng mặt.
type RiskClassifier struct {
	LostThresholdDays int
	rules             []func(c *retmodels.Customer) bool
}

// NewRiskClassifier tạo classifier với ngưỡng Lost cho trước (<=0 → mặc định 60).
func NewRiskClassifier(lostThresholdDays int) *RiskClassifier {
	if lostThresholdDays <= 0 {
		lostThresholdDays = DefaultLostThresholdDays
	}
	cl := &RiskClassifier{LostThresholdDays: lostThresholdDays}
	cl.rules = []func(c *retmodels.Customer) bool{
		cl.ruleLostOverride,
		cl.ruleNewCustomer,
		cl.ruleCadenceRatio,
		cl.ruleFallback,
	}
	return cl
}

// Classify chạy decision list, rule đầu tiên áp dụng được sẽ dừng.
func (cl *RiskClassifier) Classify(c *retmodels.Customer) {
	for _, rule := range cl.rules {
		if rule(c) {
			return
		}
	}
}

// ruleLostOverride: ngưỡng tuyệt đối, độc lập với chu kỳ riêng của khách.
func (cl *RiskClassifier) ruleLostOverride(c *retmodels.Customer) bool {
	if c.DaysSinceLastVisit <= cl.LostThresholdDays {
		return false
	}
	c.RiskLevel = retmodels.RiskLost
	c.ReturnLikelihood = 0
	if c.AvgDaysBetween > 0 {
		c.DaysOverdue = float64(c.DaysSinceLastVisit) - c.AvgDaysBetween
	} else {
		c.DaysOverdue = 0
	}
	return true
}

// ruleNewCustomer: đúng 1 giao dịch trong đời.
func (cl *RiskClassifier) ruleNewCustomer(c *retmodels.Customer) bool {
	if c.TransactionCount != 1 {
		return false
	}
	c.RiskLevel = retmodels.RiskNewCustomer
	c.ReturnLikelihood = likelihoodNewCustomer
	c.DaysOverdue = 0
	return true
}

// ruleCadenceRatio: mô hình tỷ lệ so với chu kỳ ghé riêng của khách.
func (cl *RiskClassifier) ruleCadenceRatio(c *retmodels.Customer) bool {
	if c.AvgDaysBetween <= 0 {
		return false
	}
	ratio := float64(c.DaysSinceLastVisit) / c.AvgDaysBetween
	likelihood := math.Exp(-math.Max(0, ratio-1)) * 100
	likelihood *= SegmentMultiplier(c.Segment)
	if likelihood > 100 {
		likelihood = 100
	}

	c.ReturnLikelihood = likelihood
	c.DaysOverdue = math.Max(0, float64(c.DaysSinceLastVisit)-c.AvgDaysBetween)
	switch {
	case likelihood > likelihoodHealthy:
		c.RiskLevel = retmodels.RiskHealthy
	case likelihood > likelihoodMonitor:
		c.RiskLevel = retmodels.RiskMonitor
	case likelihood > likelihoodAtRisk:
		c.RiskLevel = retmodels.RiskAtRisk
	default:
		c.RiskLevel = retmodels.RiskChurning
	}
	return true
}

// ruleFallback: nhiều giao dịch nhưng không tính được chu kỳ.
func (cl *RiskClassifier) ruleFallback(c *retmodels.Customer) bool {
	c.RiskLevel = retmodels.RiskMonitor
	c.ReturnLikelihood = likelihoodFallback
	c.DaysOverdue = 0
	return true
}

// FinalizeCustomers hoàn tất accumulator thành Customer: rút scalar từ tập
// ngày ghé rồi VỨT tập đó (memory shedding), merge phân khúc + sổ đăng ký,
// gán mức rủi ro. Kết quả sort theo CPF để output deterministic.
func FinalizeCustomers(now time.Time, accs map[string]*customerAccumulator, segIndex map[string]SegmentationInfo, regIndex map[string]RegistryInfo, classifier *RiskClassifier) []*retmodels.Customer {
	customers := make([]*retmodels.Customer, 0, len(accs))

	for doc, acc := range accs {
		c := &retmodels.Customer{
			Doc:              doc,
			Name:             acc.name,
			Phone:            acc.phone,
			TransactionCount: acc.txCount,
			Visits:           len(acc.visitDays),
			TotalGross:       acc.gross,
			TotalNet:         acc.net,
			TotalCashback:    acc.cashback,
			WashCount:        acc.washCount,
			DryCount:         acc.dryCount,
			WashRevenue:      acc.washRevenue,
			DryRevenue:       acc.dryRevenue,
			RechargeCount:    acc.rechargeCount,
			Segment:          retmodels.SegmentUnclassified,
		}
		if c.Name == "" {
			c.Name = placeholderName(doc)
		}

		// First/last visit + avg chu kỳ từ danh sách ngày đã sort;
		// chỉ tính khoảng cách dương — ghé lặp cùng ngày không kéo avg về 0.
		sort.Slice(acc.visitDates, func(i, j int) bool { return acc.visitDates[i].Before(acc.visitDates[j]) })
		if len(acc.visitDates) > 0 {
			c.FirstVisit = truncateToDay(acc.visitDates[0])
			c.LastVisit = truncateToDay(acc.visitDates[len(acc.visitDates)-1])
			c.DaysSinceLastVisit = wholeDaysBetween(c.LastVisit, now)
			c.AvgDaysBetween = averagePositiveGaps(acc.visitDates)
		}
		if c.Visits > 0 {
			c.ServicesPerVisit = float64(acc.serviceUnits) / float64(c.Visits)
		}

		// Vứt cấu trúc tạm sau khi rút xong scalar
		acc.visitDays = nil
		acc.visitDates = nil

		// Merge phân khúc: nhãn segment; tên/điện thoại chỉ đè khi đang placeholder/rỗng
		if seg, ok := segIndex[doc]; ok {
			if seg.Segment != "" {
				c.Segment = seg.Segment
			}
			if seg.Name != "" && isPlaceholderName(c.Name) {
				c.Name = seg.Name
			}
			if c.Phone == "" {
				c.Phone = seg.Phone
			}
		}

		// Merge sổ đăng ký: ví, ngày đăng ký/mua cuối, tổng đời, email
		if reg, ok := regIndex[doc]; ok {
			c.WalletBalance = reg.WalletBalance
			c.RegistrationDate = reg.RegistrationDate
			c.LastPurchaseDate = reg.LastPurchaseDate
			c.LifetimePurchases = reg.LifetimePurchases
			c.LifetimeSpent = reg.LifetimeSpent
			c.Email = reg.Email
			if reg.Name != "" && isPlaceholderName(c.Name) {
				c.Name = reg.Name
			}
			if c.Phone == "" {
				c.Phone = reg.Phone
			}
		}

		c.NormalizedPhone, c.HasValidPhone = NormalizePhone(c.Phone)
		if c.Phone == "" {
			c.NormalizedPhone = ""
			c.HasValidPhone = false
		}

		classifier.Classify(c)
		customers = append(customers, c)
	}

	sort.Slice(customers, func(i, j int) bool { return customers[i].Doc < customers[j].Doc })
	return customers
}

// averagePositiveGaps tính trung bình khoảng cách (ngày) giữa các lần ghé
// liên tiếp đã sort, bỏ khoảng cách 0 (cùng ngày). Không có khoảng cách
// dương nào → 0 (avg chưa xác định).
func averagePositiveGaps(sortedDates []time.Time) float64 {
	var sum, count float64
	for i := 1; i < len(sortedDates); i++ {
		gap := wholeDaysBetween(sortedDates[i-1], sortedDates[i])
		if gap > 0 {
			sum += float64(gap)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// wholeDaysBetween đếm số ngày lịch nguyên giữa 2 mốc (to - from).
func wholeDaysBetween(from, to time.Time) int {
	return int(truncateToDay(to).Sub(truncateToDay(from)).Hours() / 24)
}

// truncateToDay cắt về 00:00:00 UTC của ngày lịch.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// firstNonEmpty trả về chuỗi non-empty đầu tiên (sau trim).
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
