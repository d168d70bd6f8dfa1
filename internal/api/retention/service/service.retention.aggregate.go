package retsvc

import (
	"strings"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

// Loại giao dịch theo chuỗi máy + hình thức thanh toán.
const (
	TxTypeNormal   = "TYPE_1" // mua thường (có máy, gross > 0)
	TxTypeWallet   = "TYPE_2" // trả bằng ví (saldo da carteira, hoặc gross=0 có máy)
	TxTypeRecharge = "TYPE_3" // nạp ví (recarga)
	TxTypeUnknown  = "UNKNOWN"
)

// customerAccumulator gộp mọi giao dịch của 1 CPF trong lúc fold.
// visitDays và visitDates là cấu trúc tạm: bị vứt sau khi finalize rút xong
// các scalar (first/last visit, avg, visits) — dataset nhiều năm lịch sử thì
// giữ raw dates cho mọi khách là chi phí bộ nhớ lớn nhất.
type customerAccumulator struct {
	doc   string
	name  string
	phone string

	txCount    int
	visitDays  map[string]struct{}
	visitDates []time.Time

	gross    float64
	net      float64
	cashback float64

	washCount     int
	dryCount      int
	washRevenue   float64
	dryRevenue    float64
	serviceUnits  int
	rechargeCount int
}

// CountMachines đếm máy giặt/sấy từ chuỗi mô tả máy, tách theo dấu phẩy.
// "Lavadora 01, Secadora 02" → wash=1, dry=1.
func CountMachines(machineStr string) (wash int, dry int) {
	if machineStr == "" {
		return 0, 0
	}
	for _, m := range strings.Split(strings.ToLower(machineStr), ",") {
		if strings.Contains(m, "lavadora") {
			wash++
		}
		if strings.Contains(m, "secadora") {
			dry++
		}
	}
	return wash, dry
}

// ClassifyTransaction phân loại giao dịch theo chuỗi máy, hình thức thanh toán
// và gross. Thứ tự kiểm tra: recarga trước, rồi ví, rồi mua thường.
func ClassifyTransaction(row retmodels.Row) string {
	machineStr := strings.ToLower(ExtractField(row, FieldMachine))
	paymentMethod := strings.ToLower(strings.TrimSpace(row["Meio_de_Pagamento"]))
	grossValue := ParseBRNumber(ExtractField(row, FieldGross))

	if strings.Contains(machineStr, "recarga") {
		return TxTypeRecharge
	}
	if strings.Contains(paymentMethod, "saldo da carteira") {
		return TxTypeWallet
	}
	if grossValue == 0 && machineStr != "" {
		return TxTypeWallet
	}
	if machineStr != "" && grossValue > 0 {
		return TxTypeNormal
	}
	return TxTypeUnknown
}

// CashbackSettings là tham số chương trình cashback lúc gộp: tỷ lệ % trên
// gross, chỉ áp cho giao dịch từ ngày bắt đầu chương trình trở đi.
type CashbackSettings struct {
	Percent   float64
	StartDate time.Time
}

// AggregateTransactions fold toàn bộ row giao dịch thành accumulator theo CPF.
// Row thiếu/sai CPF hoặc ngày không parse được → bỏ qua + đếm diagnostics,
// không raise lỗi. Bước này chưa phân loại rủi ro.
func AggregateTransactions(rows []retmodels.Row, cashback CashbackSettings, diag Diagnostics) map[string]*customerAccumulator {
	if diag == nil {
		diag = NopDiagnostics()
	}
	accs := make(map[string]*customerAccumulator)

	for _, row := range rows {
		doc, ok := NormalizeCPF(ExtractField(row, FieldDoc))
		if !ok {
			diag.Count(DiagRowsMissingDoc, 1)
			continue
		}
		txDate, ok := ParseBRDate(ExtractField(row, FieldDate))
		if !ok {
			diag.Count(DiagRowsInvalidDate, 1)
			continue
		}

		acc, exists := accs[doc]
		if !exists {
			acc = &customerAccumulator{
				doc:       doc,
				visitDays: make(map[string]struct{}),
			}
			accs[doc] = acc
		}

		if acc.name == "" {
			acc.name = ExtractField(row, FieldName)
		}
		if acc.phone == "" {
			acc.phone = ExtractField(row, FieldPhone)
		}

		acc.txCount++
		acc.visitDays[dayKey(txDate)] = struct{}{}
		acc.visitDates = append(acc.visitDates, txDate)

		gross := ParseBRNumber(ExtractField(row, FieldGross))
		net := ParseBRNumber(ExtractField(row, FieldNet))
		acc.gross += gross
		acc.net += net

		// Cashback chỉ tính cho giao dịch từ ngày bắt đầu chương trình
		if cashback.Percent > 0 && !txDate.Before(cashback.StartDate) {
			acc.cashback += gross * cashback.Percent / 100
		}

		machineStr := ExtractField(row, FieldMachine)
		if strings.Contains(strings.ToLower(machineStr), "recarga") {
			// Nạp ví: tính tiền nhưng không phải lượt dịch vụ giặt/sấy
			acc.rechargeCount++
			diag.Count(DiagTransactionsUsed, 1)
			continue
		}

		wash, dry := CountMachines(machineStr)
		acc.washCount += wash
		acc.dryCount += dry
		acc.serviceUnits += wash + dry

		// Chia net theo tỷ lệ số máy giặt/sấy của giao dịch
		if units := wash + dry; units > 0 {
			acc.washRevenue += net * float64(wash) / float64(units)
			acc.dryRevenue += net * float64(dry) / float64(units)
		}
		diag.Count(DiagTransactionsUsed, 1)
	}

	diag.Gauge(DiagCustomersTotal, len(accs))
	return accs
}
