package retsvc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	ingestmodels "lavpop_bi/internal/api/ingest/models"
	retmodels "lavpop_bi/internal/api/retention/models"
	settingsvc "lavpop_bi/internal/api/settings/service"
	"lavpop_bi/internal/common"
	"lavpop_bi/internal/global"
	"lavpop_bi/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RetentionService nối engine thuần với Mongo: load 3 collection nguồn thành
// []Row cho engine, và lưu snapshot kết quả recompute.
type RetentionService struct {
	transactions *mongo.Collection
	customers    *mongo.Collection
	segmentation *mongo.Collection
	snapshots    *mongo.Collection
	settings     *settingsvc.SettingsService
	diag         Diagnostics
}

// NewRetentionService tạo RetentionService mới từ registry collections.
func NewRetentionService() (*RetentionService, error) {
	names := []string{
		global.ColNames.Transactions,
		global.ColNames.Customers,
		global.ColNames.Segmentation,
		global.ColNames.RetentionSnapshots,
	}
	colls := make([]*mongo.Collection, len(names))
	for i, name := range names {
		coll, exist := global.RegistryCollections.Get(name)
		if !exist {
			return nil, fmt.Errorf("không tìm thấy collection %s: %w", name, common.ErrNotFound)
		}
		colls[i] = coll
	}

	settings, err := settingsvc.NewSettingsService()
	if err != nil {
		return nil, fmt.Errorf("tạo SettingsService: %w", err)
	}

	return &RetentionService{
		transactions: colls[0],
		customers:    colls[1],
		segmentation: colls[2],
		snapshots:    colls[3],
		settings:     settings,
		diag:         LogDiagnostics(),
	}, nil
}

// formatMs đổi Unix ms về chuỗi ngày BR cho engine re-parse.
func formatMs(ms int64, withTime bool) string {
	if ms <= 0 {
		return ""
	}
	t := time.UnixMilli(ms).UTC()
	if withTime {
		return t.Format("02/01/2006 15:04:05")
	}
	return t.Format("02/01/2006")
}

// loadTransactionRows load toàn bộ giao dịch thành Row với tên cột gốc POS.
// Ưu tiên chuỗi raw đã lưu lúc import; document cũ thiếu raw thì format lại
// từ giá trị số/timestamp.
func (s *RetentionService) loadTransactionRows(ctx context.Context) ([]retmodels.Row, error) {
	cursor, err := s.transactions.Find(ctx, bson.M{})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []ingestmodels.Transaction
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	rows := make([]retmodels.Row, 0, len(docs))
	for _, t := range docs {
		dataHora := t.DataHoraRaw
		if dataHora == "" {
			dataHora = formatMs(t.DataHora, true)
		}
		valorVenda := t.ValorVendaRaw
		if valorVenda == "" {
			valorVenda = strconv.FormatFloat(t.ValorVenda, 'f', 2, 64)
		}
		valorPago := t.ValorPagoRaw
		if valorPago == "" {
			valorPago = strconv.FormatFloat(t.ValorPago, 'f', 2, 64)
		}
		rows = append(rows, retmodels.Row{
			"Doc_Cliente": t.DocCliente,
			"Data_Hora":   dataHora,
			"Data":        dataHora,
			"Valor_Venda": valorVenda,
			"Valor_Pago":  valorPago,
			"Maquinas":    t.Maquinas,
			"Nome":        t.Nome,
			"Telefone":    t.Telefone,

			"Meio_de_Pagamento": t.MeioPagamento,
		})
	}
	return rows, nil
}

// loadSegmentationRows load feed phân khúc thành Row.
func (s *RetentionService) loadSegmentationRows(ctx context.Context) ([]retmodels.Row, error) {
	cursor, err := s.segmentation.Find(ctx, bson.M{})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []ingestmodels.Segmentation
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	rows := make([]retmodels.Row, 0, len(docs))
	for _, seg := range docs {
		rows = append(rows, retmodels.Row{
			"Documento":      seg.Doc,
			"Segmento":       seg.Segmento,
			"Nome":           seg.Nome,
			"Telefone":       seg.Telefone,
			"Ultimo_Contato": formatMs(seg.UltimoContato, false),
		})
	}
	return rows, nil
}

// loadRegistryRows load sổ đăng ký khách thành Row.
func (s *RetentionService) loadRegistryRows(ctx context.Context) ([]retmodels.Row, error) {
	cursor, err := s.customers.Find(ctx, bson.M{})
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []ingestmodels.CustomerProfile
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	rows := make([]retmodels.Row, 0, len(docs))
	for _, p := range docs {
		rows = append(rows, retmodels.Row{
			"Documento":          p.Doc,
			"Nome":               p.Nome,
			"Telefone":           p.Telefone,
			"Email":              p.Email,
			"Saldo_Carteira":     strconv.FormatFloat(p.SaldoCarteira, 'f', 2, 64),
			"Total_Compras":      strconv.FormatFloat(p.TotalSpent, 'f', 2, 64),
			"Quantidade_Compras": strconv.Itoa(p.TransactionCount),
			"Data_Cadastro":      formatMs(p.DataCadastro, false),
			"Data_Ultima_Compra": formatMs(p.LastVisit, false),
		})
	}
	return rows, nil
}

// engineSettings đọc app settings thành tham số engine.
func (s *RetentionService) engineSettings(ctx context.Context) (EngineSettings, error) {
	appSettings, err := s.settings.Get(ctx)
	if err != nil {
		return EngineSettings{}, err
	}
	startDate, err := time.Parse("2006-01-02", appSettings.CashbackStartDate)
	if err != nil {
		return EngineSettings{}, common.NewError(common.ErrCodeBusiness, "Ngày bắt đầu cashback trong settings không hợp lệ: "+appSettings.CashbackStartDate, common.StatusInternalServerError, err)
	}
	return EngineSettings{
		CashbackPercent:   appSettings.CashbackPercent,
		CashbackStartDate: startDate,
		LostThresholdDays: appSettings.LostThresholdDays,
	}, nil
}

// Analytics tính object đầu ra đầy đủ từ dữ liệu hiện có trong Mongo.
// now truyền từ ngoài để chạy reproducible (zero → time.Now).
func (s *RetentionService) Analytics(ctx context.Context, now time.Time) (*retmodels.AnalyticsResult, error) {
	if now.IsZero() {
		now = time.Now()
	}
	txRows, err := s.loadTransactionRows(ctx)
	if err != nil {
		return nil, err
	}
	segRows, err := s.loadSegmentationRows(ctx)
	if err != nil {
		return nil, err
	}
	regRows, err := s.loadRegistryRows(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.engineSettings(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeAnalytics(now, txRows, segRows, regRows, settings, s.diag), nil
}

// RiskMap trả về projection bản đồ rủi ro.
func (s *RetentionService) RiskMap(ctx context.Context, now time.Time) ([]retmodels.RiskMapPoint, error) {
	result, err := s.Analytics(ctx, now)
	if err != nil {
		return nil, err
	}
	return BuildRiskMap(result.All), nil
}

// IntervalHistogram trả về histogram chu kỳ ghé tiệm.
func (s *RetentionService) IntervalHistogram(ctx context.Context, now time.Time) ([]retmodels.IntervalBucket, error) {
	result, err := s.Analytics(ctx, now)
	if err != nil {
		return nil, err
	}
	return BuildIntervalHistogram(result.All), nil
}

// Cohorts trả về tỷ lệ quay lại cho các mốc 30/60/90 ngày.
// Cohort đọc thẳng row giao dịch vì cần đủ tập ngày ghé per khách.
func (s *RetentionService) Cohorts(ctx context.Context, now time.Time) ([]retmodels.CohortRate, error) {
	if now.IsZero() {
		now = time.Now()
	}
	txRows, err := s.loadTransactionRows(ctx)
	if err != nil {
		return nil, err
	}
	return BuildRetentionCohorts(now, txRows, CohortLookbacks), nil
}

// AcquisitionTrend trả về chuỗi khách mới theo ngày trong days gần nhất.
func (s *RetentionService) AcquisitionTrend(ctx context.Context, now time.Time, days int) (*retmodels.AcquisitionTrend, error) {
	result, err := s.Analytics(ctx, now)
	if err != nil {
		return nil, err
	}
	trend := BuildAcquisitionTrend(orNow(now), result.All, days)
	return &trend, nil
}

// Recompute tính lại toàn bộ và lưu snapshot cho dashboard đọc.
func (s *RetentionService) Recompute(ctx context.Context, now time.Time) (*retmodels.RetentionSnapshot, error) {
	now = orNow(now)
	start := time.Now()

	result, err := s.Analytics(ctx, now)
	if err != nil {
		return nil, err
	}

	snapshot := &retmodels.RetentionSnapshot{
		ComputedAt: time.Now().UnixMilli(),
		Now:        now.UnixMilli(),
		Result:     result,
		DurationMs: time.Since(start).Milliseconds(),
	}
	res, err := s.snapshots.InsertOne(ctx, snapshot)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	if id, ok := res.InsertedID.(interface{ Hex() string }); ok {
		logger.GetAppLogger().WithField("snapshotId", id.Hex()).
			WithField("customers", result.TotalCustomers).
			Info("đã lưu retention snapshot")
	}
	logger.GetAuditLogger().WithFields(map[string]interface{}{
		"customers":  result.TotalCustomers,
		"durationMs": snapshot.DurationMs,
	}).Info("Recompute retention hoàn tất")
	return snapshot, nil
}

// LatestSnapshot trả về snapshot mới nhất (nếu có).
func (s *RetentionService) LatestSnapshot(ctx context.Context) (*retmodels.RetentionSnapshot, error) {
	opts := options.FindOne().SetSort(bson.M{"computedAt": -1})
	var snapshot retmodels.RetentionSnapshot
	if err := s.snapshots.FindOne(ctx, bson.M{}, opts).Decode(&snapshot); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return &snapshot, nil
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
