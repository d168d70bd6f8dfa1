package retsvc

import "lavpop_bi/internal/logger"

// Tên counter/gauge phát ra từ engine. Row lỗi bị bỏ khỏi gộp và đếm vào
// đây thay vì raise lỗi — engine luôn trả về kết quả best-effort.
const (
	DiagRowsMissingDoc    = "rows_missing_doc"     // thiếu CPF hoặc CPF không hợp lệ
	DiagRowsInvalidDate   = "rows_invalid_date"    // ngày không parse được
	DiagSegmentationIndex = "segmentation_index"   // kích thước bảng lookup phân khúc
	DiagRegistryIndex     = "registry_index"       // kích thước bảng lookup sổ đăng ký
	DiagCustomersTotal    = "customers_total"      // số khách sau gộp
	DiagTransactionsUsed  = "transactions_used"    // số row giao dịch được nhận vào gộp
)

// Diagnostics là sink metric tiêm vào engine thay cho side channel console:
// caller tự quyết log, bỏ qua, hay assert trong test.
type Diagnostics interface {
	Count(name string, delta int)
	Gauge(name string, value int)
}

// nopDiagnostics bỏ qua mọi metric.
type nopDiagnostics struct{}

func (nopDiagnostics) Count(string, int) {}
func (nopDiagnostics) Gauge(string, int) {}

// NopDiagnostics trả về sink bỏ qua mọi metric — dùng khi caller không quan tâm.
func NopDiagnostics() Diagnostics {
	return nopDiagnostics{}
}

// logDiagnostics ghi metric ra app logger ở mức Debug.
type logDiagnostics struct{}

func (logDiagnostics) Count(name string, delta int) {
	logger.GetAppLogger().WithField("metric", name).WithField("delta", delta).Debug("retention diagnostics counter")
}

func (logDiagnostics) Gauge(name string, value int) {
	logger.GetAppLogger().WithField("metric", name).WithField("value", value).Debug("retention diagnostics gauge")
}

// LogDiagnostics trả về sink ghi metric ra app logger.
func LogDiagnostics() Diagnostics {
	return logDiagnostics{}
}

// RecorderDiagnostics gom metric vào map — dùng để assert trong test.
type RecorderDiagnostics struct {
	Counters map[string]int
	Gauges   map[string]int
}

// NewRecorderDiagnostics tạo recorder rỗng.
func NewRecorderDiagnostics() *RecorderDiagnostics {
	return &RecorderDiagnostics{
		Counters: make(map[string]int),
		Gauges:   make(map[string]int),
	}
}

func (r *RecorderDiagnostics) Count(name string, delta int) {
	r.Counters[name] += delta
}

func (r *RecorderDiagnostics) Gauge(name string, value int) {
	r.Gauges[name] = value
}
