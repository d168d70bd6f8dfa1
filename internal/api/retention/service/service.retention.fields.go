// Package retsvc - Engine retention: trích xuất/chuẩn hóa field, gộp theo
// khách, phân loại rủi ro churn và 4 projection phân tích.
//
// Engine thuần in-memory, đồng bộ, không I/O: mỗi lần gọi dựng lại toàn bộ
// trạng thái khách từ 3 mảng input (full recompute, không incremental).
package retsvc

import (
	"strconv"
	"strings"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

// Tên logical field dùng trong bảng alias.
const (
	FieldDoc     = "doc"
	FieldPhone   = "phone"
	FieldName    = "name"
	FieldDate    = "date"
	FieldGross   = "gross"
	FieldNet     = "net"
	FieldMachine = "machine"
)

// FieldAliases ánh xạ logical field → danh sách tên cột theo thứ tự ưu tiên.
// Data-driven thay vì if/else từng nguồn: thêm format nguồn mới chỉ cần thêm
// alias, không đụng vào logic phân loại.
var FieldAliases = map[string][]string{
	FieldDoc:     {"Doc_Cliente", "Documento", "doc", "document", "CPF", "cpf"},
	FieldPhone:   {"phone number", "Telefone", "phone", "Phone", "tel", "celular", "mobile"},
	FieldName:    {"client name", "Nome", "name", "Name", "Cliente", "cliente"},
	FieldDate:    {"Data", "Data_Hora", "date"},
	FieldGross:   {"Valor_Venda", "gross_value"},
	FieldNet:     {"Valor_Pago", "net_value"},
	FieldMachine: {"Maquina", "machine", "Maquinas"},
}

// ExtractField trả về giá trị non-empty đầu tiên theo danh sách alias của
// logical field. Không tìm thấy → chuỗi rỗng.
func ExtractField(row retmodels.Row, field string) string {
	for _, alias := range FieldAliases[field] {
		if v, ok := row[alias]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// NormalizeCPF chuẩn hóa CPF: bỏ mọi ký tự không phải số; thiếu thì pad số 0
// bên trái cho đủ 11 chữ số, thừa thì giữ 11 chữ số cuối. Trả về ("", false)
// khi rỗng hoặc trúng blacklist (11 chữ số giống hệt nhau — CPF giả/synthetic).
func NormalizeCPF(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", false
	}
	if len(digits) < 11 {
		digits = strings.Repeat("0", 11-len(digits)) + digits
	} else if len(digits) > 11 {
		digits = digits[len(digits)-11:]
	}

	// Blacklist: chuỗi toàn 1 chữ số (000..., 111...) là CPF không hợp lệ
	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return "", false
	}
	return digits, true
}

// ParseBRNumber parse số tiền định dạng Brazil:
// "1.234,56" → 1234.56 (chấm là dấu nhóm, phẩy là dấu thập phân);
// "1,5" → 1.5 (chỉ có phẩy → phẩy là dấu thập phân);
// còn lại parse trực tiếp. Không parse được → 0, không báo lỗi.
func ParseBRNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Các layout ngày Brazil theo thứ tự thử: có giờ trước, năm 4 chữ số trước.
var brDateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02/01/06 15:04:05",
	"02/01/06 15:04",
	"02/01/06",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBRDate parse ngày DD/MM/YYYY (kèm giờ nếu có, năm 2 chữ số chấp nhận).
// Trả về (zero time, false) khi không parse được — row đó bị bỏ khỏi gộp.
func ParseBRDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range brDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizePhone chuẩn hóa số điện thoại Brazil: bỏ ký tự không phải số,
// bỏ mã quốc gia 55 nếu có. Hợp lệ khi còn 10-11 chữ số (số cố định/di động).
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 11 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	if len(digits) == 10 || len(digits) == 11 {
		return digits, true
	}
	return digits, false
}

// dayKey trả về key ngày lịch (YYYY-MM-DD) dùng để đếm ngày ghé distinct.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
