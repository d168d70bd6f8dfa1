// Package ingestvc - Service import CSV cho 3 nguồn dữ liệu: bán hàng POS,
// sổ đăng ký khách, feed phân khúc. Mirror pipeline upload gốc: làm sạch
// file, dò delimiter, parse theo header, dedup, upsert theo batch, ghi
// lịch sử upload.
package ingestvc

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	ingestmodels "lavpop_bi/internal/api/ingest/models"
	retmodels "lavpop_bi/internal/api/retention/models"
	"lavpop_bi/internal/common"
)

// imtPrefixPattern là rác "IMTString(n):" mà tool xuất file đôi khi chèn đầu file.
var imtPrefixPattern = regexp.MustCompile(`^IMTString\(\d+\):\s*`)

// CleanCSV bỏ BOM và prefix IMTString khỏi nội dung CSV.
func CleanCSV(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = imtPrefixPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// DetectDelimiter dò dấu phân cách (; hoặc ,) theo dòng đầu tiên.
func DetectDelimiter(text string) rune {
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

// ParseCSV parse nội dung CSV thành danh sách Row key theo header.
// File rỗng hoặc chỉ có header → lỗi ErrIngestEmptyFile.
func ParseCSV(data []byte) ([]retmodels.Row, error) {
	text := CleanCSV(string(data))
	if text == "" {
		return nil, common.ErrIngestEmptyFile
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = DetectDelimiter(text)
	reader.FieldsPerRecord = -1 // chấp nhận row thiếu/thừa cột, xử lý bên dưới
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, common.NewError(common.ErrCodeIngestParse, fmt.Sprintf("Không parse được CSV: %v", err), common.StatusBadRequest, err)
	}
	if len(records) < 2 {
		return nil, common.ErrIngestEmptyFile
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]retmodels.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(retmodels.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DetectFileType nhận diện loại file theo header (dòng đầu, lowercase).
// Thứ tự kiểm tra: sales → segmentation → customers.
func DetectFileType(data []byte) string {
	text := CleanCSV(string(data))
	firstLine, _, _ := strings.Cut(text, "\n")
	firstLine = strings.ToLower(firstLine)

	if strings.Contains(firstLine, "data_hora") || strings.Contains(firstLine, "maquinas") {
		return ingestmodels.FileTypeSales
	}
	if strings.Contains(firstLine, "segmento") || strings.Contains(firstLine, "segment") {
		return ingestmodels.FileTypeSegmentation
	}
	if strings.Contains(firstLine, "documento") || strings.Contains(firstLine, "saldo_carteira") {
		return ingestmodels.FileTypeCustomers
	}
	return ingestmodels.FileTypeUnknown
}

// GenerateImportHash tạo hash chống trùng từ các giá trị GỐC của row
// (chưa chuẩn hóa) — cùng 1 dòng CSV upload lại luôn cho cùng hash.
// Lấy 32 ký tự hex đầu của sha256.
func GenerateImportHash(dataHora, docCliente, valorVenda, maquinas string) string {
	content := dataHora + "|" + docCliente + "|" + valorVenda + "|" + maquinas
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:32]
}
