package ingestvc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	ingestdto "lavpop_bi/internal/api/ingest/dto"
	ingestmodels "lavpop_bi/internal/api/ingest/models"
	retsvc "lavpop_bi/internal/api/retention/service"
	"lavpop_bi/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UploadCustomers import file sổ đăng ký khách vào customers, dedup theo CPF
// trong file (dòng sau thắng). Upsert KHÔNG LÙI: field profile (tên, điện
// thoại, email, ví) luôn cập nhật; ngày đăng ký/first visit lấy min, last
// visit và số đếm/tổng đời lấy max — file cũ upload lại không kéo lùi dữ liệu.
func (s *IngestService) UploadCustomers(ctx context.Context, fileName string, data []byte) (*ingestdto.UploadResult, error) {
	start := time.Now()
	result := &ingestdto.UploadResult{FileType: ingestmodels.FileTypeCustomers, FileName: fileName}

	rows, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	result.Total = len(rows)

	now := time.Now().UnixMilli()
	profiles := make(map[string]*ingestmodels.CustomerProfile)

	for _, row := range rows {
		doc, ok := retsvc.NormalizeCPF(row["Documento"])
		if !ok {
			result.Skipped++
			continue
		}

		profile := &ingestmodels.CustomerProfile{
			Doc:           doc,
			Nome:          row["Nome"],
			Telefone:      row["Telefone"],
			Email:         row["Email"],
			SaldoCarteira: retsvc.ParseBRNumber(row["Saldo_Carteira"]),
			TotalSpent:    retsvc.ParseBRNumber(row["Total_Compras"]),
			Source:        fileName,
			UpdatedAt:     now,
		}
		if n, err := strconv.Atoi(strings.TrimSpace(row["Quantidade_Compras"])); err == nil {
			profile.TransactionCount = n
		}
		if t, ok := retsvc.ParseBRDate(row["Data_Cadastro"]); ok {
			profile.DataCadastro = t.UnixMilli()
			profile.FirstVisit = t.UnixMilli()
		}
		if t, ok := retsvc.ParseBRDate(row["Data_Ultima_Compra"]); ok {
			profile.LastVisit = t.UnixMilli()
		}
		profiles[doc] = profile
	}

	for doc, p := range profiles {
		set := bson.M{
			"doc":           p.Doc,
			"nome":          p.Nome,
			"telefone":      p.Telefone,
			"email":         p.Email,
			"saldoCarteira": p.SaldoCarteira,
			"source":        p.Source,
			"updatedAt":     p.UpdatedAt,
		}
		max := bson.M{
			"transactionCount": p.TransactionCount,
			"totalSpent":       p.TotalSpent,
		}
		if p.LastVisit > 0 {
			max["lastVisit"] = p.LastVisit
		}
		update := bson.M{"$set": set, "$max": max}
		// Ngày đăng ký/first visit chỉ đi lùi về sớm hơn, không nhảy tới
		if p.DataCadastro > 0 {
			update["$min"] = bson.M{
				"dataCadastro": p.DataCadastro,
				"firstVisit":   p.FirstVisit,
			}
		}

		res, err := s.customers.UpdateOne(ctx, bson.M{"doc": doc}, update, options.Update().SetUpsert(true))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("CPF %s: %v", doc, err))
			continue
		}
		if res.UpsertedCount > 0 {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	finishResult(result, start)
	s.logHistory(ctx, result)
	return result, nil
}

// UploadSegmentation import feed phân khúc RFM vào segmentation, 1 document
// per CPF, upsert đè toàn bộ (feed là snapshot mới nhất từ marketing).
func (s *IngestService) UploadSegmentation(ctx context.Context, fileName string, data []byte) (*ingestdto.UploadResult, error) {
	start := time.Now()
	result := &ingestdto.UploadResult{FileType: ingestmodels.FileTypeSegmentation, FileName: fileName}

	rows, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	result.Total = len(rows)

	now := time.Now().UnixMilli()
	for _, row := range rows {
		doc, ok := retsvc.NormalizeCPF(firstNonEmptyValue(row["Documento"], row["Doc_Cliente"], row["doc"]))
		if !ok {
			result.Skipped++
			continue
		}

		segmento := firstNonEmptyValue(row["Segmento"], row["segment"])
		if err := global.Validate.Var(segmento, "rfm_segment"); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("CPF %s: nhãn phân khúc không hợp lệ %q", doc, segmento))
			continue
		}

		seg := &ingestmodels.Segmentation{
			Doc:       doc,
			Segmento:  segmento,
			Nome:      row["Nome"],
			Telefone:  row["Telefone"],
			UpdatedAt: now,
		}
		if t, ok := retsvc.ParseBRDate(firstNonEmptyValue(row["Ultimo_Contato"], row["last_contact"])); ok {
			seg.UltimoContato = t.UnixMilli()
		}

		res, err := s.segmentation.ReplaceOne(ctx, bson.M{"doc": doc}, seg, options.Replace().SetUpsert(true))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("CPF %s: %v", doc, err))
			continue
		}
		if res.UpsertedCount > 0 {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	finishResult(result, start)
	s.logHistory(ctx, result)
	return result, nil
}

// firstNonEmptyValue trả về chuỗi non-empty đầu tiên (sau trim).
func firstNonEmptyValue(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
