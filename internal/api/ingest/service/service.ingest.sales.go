package ingestvc

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	ingestdto "lavpop_bi/internal/api/ingest/dto"
	ingestmodels "lavpop_bi/internal/api/ingest/models"
	retsvc "lavpop_bi/internal/api/retention/service"
	"lavpop_bi/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// batchSize là kích thước batch khi bulk upsert.
const batchSize = 500

// UploadSales import file bán hàng POS vào transactions.
// Mỗi row: parse ngày + CPF (hỏng → skip), hash chống trùng từ giá trị gốc,
// phân loại TYPE, đếm máy, tính cashback theo settings, rồi bulk upsert
// theo importHash — upload lại cùng file không tạo bản ghi trùng.
func (s *IngestService) UploadSales(ctx context.Context, fileName string, data []byte) (*ingestdto.UploadResult, error) {
	start := time.Now()
	result := &ingestdto.UploadResult{FileType: ingestmodels.FileTypeSales, FileName: fileName}

	rows, err := ParseCSV(data)
	if err != nil {
		return nil, err
	}
	result.Total = len(rows)

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	cashbackStart, err := time.Parse("2006-01-02", settings.CashbackStartDate)
	if err != nil {
		return nil, common.NewError(common.ErrCodeBusiness, "Ngày bắt đầu cashback trong settings không hợp lệ: "+settings.CashbackStartDate, common.StatusInternalServerError, err)
	}

	now := time.Now().UnixMilli()
	seen := make(map[string]struct{})
	var docs []interface{}

	for _, row := range rows {
		dataHoraRaw := row["Data_Hora"]
		txDate, ok := retsvc.ParseBRDate(dataHoraRaw)
		if !ok {
			result.Skipped++
			continue
		}
		doc, ok := retsvc.NormalizeCPF(row["Doc_Cliente"])
		if !ok {
			result.Skipped++
			continue
		}

		machineStr := row["Maquinas"]
		importHash := GenerateImportHash(dataHoraRaw, row["Doc_Cliente"], row["Valor_Venda"], machineStr)
		if _, dup := seen[importHash]; dup {
			// Dòng trùng trong cùng file: bỏ im lặng, không tính skip
			continue
		}
		seen[importHash] = struct{}{}

		gross := retsvc.ParseBRNumber(row["Valor_Venda"])
		paid := retsvc.ParseBRNumber(row["Valor_Pago"])
		wash, dry := retsvc.CountMachines(machineStr)

		var cashback float64
		if gross > 0 && !txDate.Before(cashbackStart) {
			cashback = math.Round(gross*settings.CashbackPercent) / 100
		}

		docs = append(docs, &ingestmodels.Transaction{
			ImportHash:      importHash,
			DataHoraRaw:     dataHoraRaw,
			ValorVendaRaw:   row["Valor_Venda"],
			ValorPagoRaw:    row["Valor_Pago"],
			DataHora:        txDate.UnixMilli(),
			DocCliente:      doc,
			Nome:            row["Nome_Cliente"],
			Telefone:        row["Telefone"],
			ValorVenda:      gross,
			ValorPago:       paid,
			Maquinas:        machineStr,
			MeioPagamento:   row["Meio_de_Pagamento"],
			TransactionType: retsvc.ClassifyTransaction(row),
			IsRecarga:       strings.Contains(strings.ToLower(machineStr), "recarga"),
			WashCount:       wash,
			DryCount:        dry,
			Cashback:        cashback,
			CreatedAt:       now,
		})
	}

	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		writes := make([]mongo.WriteModel, 0, end-i)
		for _, d := range docs[i:end] {
			tx := d.(*ingestmodels.Transaction)
			writes = append(writes, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"importHash": tx.ImportHash}).
				SetReplacement(tx).
				SetUpsert(true))
		}
		res, err := s.transactions.BulkWrite(ctx, writes, nil)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Batch %d: %v", i/batchSize, err))
			continue
		}
		result.Inserted += int(res.UpsertedCount)
		result.Updated += int(res.ModifiedCount)
	}

	finishResult(result, start)
	s.logHistory(ctx, result)
	return result, nil
}
