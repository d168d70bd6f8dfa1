package retsvc

import (
	"math"
	"testing"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify_LostOverride(t *testing.T) {
	cl := NewRiskClassifier(60)

	// Khách chu kỳ 10 ngày nhưng vắng 65 ngày: ngưỡng tuyệt đối thắng mô hình tỷ lệ
	c := &retmodels.Customer{TransactionCount: 8, AvgDaysBetween: 10, DaysSinceLastVisit: 65}
	cl.Classify(c)
	if c.RiskLevel != retmodels.RiskLost {
		t.Errorf("quá ngưỡng 60 ngày phải là Lost, got %q", c.RiskLevel)
	}
	if c.ReturnLikelihood != 0 {
		t.Errorf("Lost phải có likelihood 0, got %v", c.ReturnLikelihood)
	}
	if c.DaysOverdue != 55 {
		t.Errorf("DaysOverdue = 65 - 10 = 55, got %v", c.DaysOverdue)
	}

	// Không có avg → DaysOverdue 0
	c2 := &retmodels.Customer{TransactionCount: 1, DaysSinceLastVisit: 100}
	cl.Classify(c2)
	if c2.RiskLevel != retmodels.RiskLost || c2.DaysOverdue != 0 {
		t.Errorf("Lost không có avg phải có DaysOverdue 0, got (%q, %v)", c2.RiskLevel, c2.DaysOverdue)
	}

	// Đúng tại ngưỡng thì CHƯA Lost
	c3 := &retmodels.Customer{TransactionCount: 8, AvgDaysBetween: 10, DaysSinceLastVisit: 60}
	cl.Classify(c3)
	if c3.RiskLevel == retmodels.RiskLost {
		t.Error("đúng 60 ngày chưa được tính là Lost")
	}
}

func TestClassify_NewCustomer(t *testing.T) {
	cl := NewRiskClassifier(0) // <=0 → dùng mặc định 60
	c := &retmodels.Customer{TransactionCount: 1, DaysSinceLastVisit: 20}
	cl.Classify(c)
	if c.RiskLevel != retmodels.RiskNewCustomer {
		t.Errorf("1 giao dịch phải là New Customer, got %q", c.RiskLevel)
	}
	if c.ReturnLikelihood != 50 {
		t.Errorf("New Customer phải có likelihood 50, got %v", c.ReturnLikelihood)
	}
}

func TestClassify_CadenceRelative(t *testing.T) {
	cl := NewRiskClassifier(60)

	// Cùng 40 ngày vắng mặt: khách chu kỳ 7 ngày đang churn,
	// khách chu kỳ 90 ngày vẫn hoàn toàn bình thường.
	short := &retmodels.Customer{TransactionCount: 10, AvgDaysBetween: 7, DaysSinceLastVisit: 40}
	long := &retmodels.Customer{TransactionCount: 10, AvgDaysBetween: 90, DaysSinceLastVisit: 40}
	cl.Classify(short)
	cl.Classify(long)

	if short.RiskLevel != retmodels.RiskChurning {
		t.Errorf("chu kỳ 7 ngày vắng 40 ngày phải là Churning, got %q", short.RiskLevel)
	}
	if long.RiskLevel != retmodels.RiskHealthy {
		t.Errorf("chu kỳ 90 ngày vắng 40 ngày phải là Healthy, got %q", long.RiskLevel)
	}
	if long.ReturnLikelihood != 100 {
		t.Errorf("ratio < 1 phải cho likelihood 100, got %v", long.ReturnLikelihood)
	}
	if long.DaysOverdue != 0 {
		t.Errorf("chưa quá chu kỳ thì DaysOverdue phải là 0, got %v", long.DaysOverdue)
	}
	if short.DaysOverdue != 33 {
		t.Errorf("DaysOverdue = 40 - 7 = 33, got %v", short.DaysOverdue)
	}
}

func TestClassify_SegmentBonus(t *testing.T) {
	cl := NewRiskClassifier(60)

	// ratio = 1.5 → base = exp(-0.5)*100 ≈ 60.65: VIP được đẩy lên Healthy,
	// Inativo bị kéo xuống sát ngưỡng Monitor.
	vip := &retmodels.Customer{TransactionCount: 5, AvgDaysBetween: 20, DaysSinceLastVisit: 30, Segment: retmodels.SegmentVIP}
	inativo := &retmodels.Customer{TransactionCount: 5, AvgDaysBetween: 20, DaysSinceLastVisit: 30, Segment: retmodels.SegmentInativo}
	cl.Classify(vip)
	cl.Classify(inativo)

	base := math.Exp(-0.5) * 100
	if math.Abs(vip.ReturnLikelihood-base*1.2) > 1e-9 {
		t.Errorf("VIP likelihood = %v, muốn %v", vip.ReturnLikelihood, base*1.2)
	}
	if vip.RiskLevel != retmodels.RiskHealthy {
		t.Errorf("VIP với ratio 1.5 phải là Healthy, got %q", vip.RiskLevel)
	}
	if math.Abs(inativo.ReturnLikelihood-base*0.5) > 1e-9 {
		t.Errorf("Inativo likelihood = %v, muốn %v", inativo.ReturnLikelihood, base*0.5)
	}
	if inativo.RiskLevel != retmodels.RiskMonitor {
		t.Errorf("Inativo với ratio 1.5 phải là Monitor, got %q", inativo.RiskLevel)
	}
}

func TestClassify_LikelihoodBounds(t *testing.T) {
	cl := NewRiskClassifier(60)
	cases := []*retmodels.Customer{
		{TransactionCount: 3, AvgDaysBetween: 100, DaysSinceLastVisit: 1, Segment: retmodels.SegmentVIP}, // clamp 100
		{TransactionCount: 3, AvgDaysBetween: 1, DaysSinceLastVisit: 59},                                 // gần 0
		{TransactionCount: 3, DaysSinceLastVisit: 10},                                                    // fallback
		{TransactionCount: 1, DaysSinceLastVisit: 10},                                                    // new customer
		{TransactionCount: 3, AvgDaysBetween: 10, DaysSinceLastVisit: 999},                               // lost
	}
	for i, c := range cases {
		cl.Classify(c)
		if c.ReturnLikelihood < 0 || c.ReturnLikelihood > 100 {
			t.Errorf("case %d: likelihood %v nằm ngoài [0, 100]", i, c.ReturnLikelihood)
		}
	}
}

func TestClassify_Fallback(t *testing.T) {
	cl := NewRiskClassifier(60)
	// Nhiều giao dịch nhưng toàn ghé cùng 1 ngày → không có avg
	c := &retmodels.Customer{TransactionCount: 3, AvgDaysBetween: 0, DaysSinceLastVisit: 10}
	cl.Classify(c)
	if c.RiskLevel != retmodels.RiskMonitor || c.ReturnLikelihood != 40 {
		t.Errorf("fallback phải là Monitor/40, got (%q, %v)", c.RiskLevel, c.ReturnLikelihood)
	}
}

func TestAveragePositiveGaps_SameDayExcluded(t *testing.T) {
	// 2 lần ghé cùng ngày + 1 lần sau 10 ngày: đúng 1 khoảng cách = 10,
	// khoảng cách 0 cùng ngày không được kéo avg xuống 5.
	dates := []time.Time{
		day(2025, 6, 1),
		day(2025, 6, 1),
		day(2025, 6, 11),
	}
	if got := averagePositiveGaps(dates); got != 10 {
		t.Errorf("averagePositiveGaps = %v, muốn 10", got)
	}

	// Không có khoảng cách dương → avg chưa xác định (0)
	sameDay := []time.Time{day(2025, 6, 1), day(2025, 6, 1)}
	if got := averagePositiveGaps(sameDay); got != 0 {
		t.Errorf("toàn ghé cùng ngày phải cho avg 0, got %v", got)
	}
	if got := averagePositiveGaps(nil); got != 0 {
		t.Errorf("không có lần ghé nào phải cho avg 0, got %v", got)
	}
}

func TestFinalizeCustomers_MergeAndOrder(t *testing.T) {
	now := day(2025, 8, 1)
	cl := NewRiskClassifier(60)

	accs := map[string]*customerAccumulator{
		"52998224725": {
			doc:     "52998224725",
			txCount: 3,
			visitDays: map[string]struct{}{
				"2025-07-01": {}, "2025-07-11": {}, "2025-07-21": {},
			},
			visitDates:    []time.Time{day(2025, 7, 21), day(2025, 7, 1), day(2025, 7, 11)},
			gross:         90,
			serviceUnits:  6,
			rechargeCount: 2,
		},
		"16899535009": {
			doc:        "16899535009",
			name:       "Maria Silva",
			phone:      "(11) 98765-4321",
			txCount:    1,
			visitDays:  map[string]struct{}{"2025-07-20": {}},
			visitDates: []time.Time{day(2025, 7, 20)},
		},
	}
	segIndex := map[string]SegmentationInfo{
		"52998224725": {Segment: retmodels.SegmentVIP, Name: "João Santos", Phone: "11912345678"},
	}
	regIndex := map[string]RegistryInfo{
		"52998224725": {WalletBalance: 25.5, Email: "joao@example.com", LifetimePurchases: 12},
	}

	customers := FinalizeCustomers(now, accs, segIndex, regIndex, cl)
	if len(customers) != 2 {
		t.Fatalf("muốn 2 khách, got %d", len(customers))
	}

	// Output phải sort theo CPF tăng dần
	if customers[0].Doc != "16899535009" || customers[1].Doc != "52998224725" {
		t.Errorf("output phải sort theo CPF: got [%s, %s]", customers[0].Doc, customers[1].Doc)
	}

	joao := customers[1]
	if joao.Name != "João Santos" {
		t.Errorf("tên placeholder phải bị đè bởi tên từ feed phân khúc, got %q", joao.Name)
	}
	if joao.Segment != retmodels.SegmentVIP {
		t.Errorf("segment = %q, muốn VIP", joao.Segment)
	}
	if joao.AvgDaysBetween != 10 {
		t.Errorf("avg chu kỳ = %v, muốn 10 (ngày chưa sort phải được sort trước khi tính)", joao.AvgDaysBetween)
	}
	if joao.DaysSinceLastVisit != 11 {
		t.Errorf("DaysSinceLastVisit = %d, muốn 11", joao.DaysSinceLastVisit)
	}
	if joao.ServicesPerVisit != 2 {
		t.Errorf("ServicesPerVisit = %v, muốn 6/3 = 2", joao.ServicesPerVisit)
	}
	if joao.WalletBalance != 25.5 || joao.Email != "joao@example.com" || joao.LifetimePurchases != 12 {
		t.Error("profile sổ đăng ký không được merge đầy đủ")
	}
	if joao.RechargeCount != 2 {
		t.Errorf("RechargeCount = %d, muốn 2 (số lần nạp ví phải theo khách ra output)", joao.RechargeCount)
	}
	if !joao.HasValidPhone || joao.NormalizedPhone != "11912345678" {
		t.Errorf("điện thoại từ feed phân khúc phải được chuẩn hóa, got (%q, %v)", joao.NormalizedPhone, joao.HasValidPhone)
	}

	maria := customers[0]
	if maria.RiskLevel != retmodels.RiskNewCustomer {
		t.Errorf("khách 1 giao dịch phải là New Customer, got %q", maria.RiskLevel)
	}
	if maria.Name != "Maria Silva" {
		t.Errorf("tên thật từ giao dịch không được đè, got %q", maria.Name)
	}
	if maria.Segment != retmodels.SegmentUnclassified {
		t.Errorf("khách không có trong feed phân khúc phải là %q, got %q", retmodels.SegmentUnclassified, maria.Segment)
	}

	// Memory shedding: tập ngày tạm phải bị vứt sau finalize
	for doc, acc := range accs {
		if acc.visitDays != nil || acc.visitDates != nil {
			t.Errorf("accumulator %s còn giữ tập ngày sau finalize", doc)
		}
	}
}

func TestSegmentMultiplier(t *testing.T) {
	cases := map[string]float64{
		retmodels.SegmentVIP:       1.2,
		retmodels.SegmentFrequente: 1.1,
		retmodels.SegmentPromissor: 1.05,
		retmodels.SegmentNovato:    1.0,
		retmodels.SegmentEsfriando: 0.8,
		retmodels.SegmentInativo:   0.5,
		"Segmento Lạ":              1.0,
		"":                         1.0,
	}
	for seg, want := range cases {
		if got := SegmentMultiplier(seg); got != want {
			t.Errorf("SegmentMultiplier(%q) = %v, muốn %v", seg, got, want)
		}
	}
}
