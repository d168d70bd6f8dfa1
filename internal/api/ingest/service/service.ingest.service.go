package ingestvc

import (
	"context"
	"fmt"
	"time"

	ingestdto "lavpop_bi/internal/api/ingest/dto"
	ingestmodels "lavpop_bi/internal/api/ingest/models"
	settingsvc "lavpop_bi/internal/api/settings/service"
	"lavpop_bi/internal/common"
	"lavpop_bi/internal/global"
	"lavpop_bi/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxHistoryErrors là số lỗi tối đa giữ lại trong 1 bản ghi lịch sử.
const maxHistoryErrors = 10

// IngestService import file CSV vào các collection nguồn.
type IngestService struct {
	transactions *mongo.Collection
	customers    *mongo.Collection
	segmentation *mongo.Collection
	history      *mongo.Collection
	settings     *settingsvc.SettingsService
}

// NewIngestService tạo IngestService mới từ registry collections.
func NewIngestService() (*IngestService, error) {
	names := []string{
		global.ColNames.Transactions,
		global.ColNames.Customers,
		global.ColNames.Segmentation,
		global.ColNames.UploadHistory,
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

	return &IngestService{
		transactions: colls[0],
		customers:    colls[1],
		segmentation: colls[2],
		history:      colls[3],
		settings:     settings,
	}, nil
}

// Upload nhận diện loại file theo header rồi chuyển cho uploader tương ứng.
func (s *IngestService) Upload(ctx context.Context, fileName string, data []byte) (*ingestdto.UploadResult, error) {
	switch DetectFileType(data) {
	case ingestmodels.FileTypeSales:
		return s.UploadSales(ctx, fileName, data)
	case ingestmodels.FileTypeCustomers:
		return s.UploadCustomers(ctx, fileName, data)
	case ingestmodels.FileTypeSegmentation:
		return s.UploadSegmentation(ctx, fileName, data)
	default:
		return nil, common.ErrIngestUnknownType
	}
}

// logHistory ghi bản ghi audit cho 1 lần upload. Lỗi ghi history không làm
// fail lần upload (kết quả import đã commit xong).
func (s *IngestService) logHistory(ctx context.Context, result *ingestdto.UploadResult) {
	errs := result.Errors
	if len(errs) > maxHistoryErrors {
		errs = errs[:maxHistoryErrors]
	}
	_, _ = s.history.InsertOne(ctx, &ingestmodels.UploadHistory{
		FileType:   result.FileType,
		FileName:   result.FileName,
		TotalRows:  result.Total,
		Inserted:   result.Inserted,
		Updated:    result.Updated,
		Skipped:    result.Skipped,
		Errors:     errs,
		Status:     result.Status,
		DurationMs: result.DurationMs,
		UploadedAt: time.Now().UnixMilli(),
	})

	logger.GetAuditLogger().WithFields(map[string]interface{}{
		"fileType":   result.FileType,
		"fileName":   result.FileName,
		"total":      result.Total,
		"inserted":   result.Inserted,
		"updated":    result.Updated,
		"skipped":    result.Skipped,
		"status":     result.Status,
		"durationMs": result.DurationMs,
	}).Info("Upload CSV hoàn tất")
}

// ListHistory trả về các lần upload gần nhất, mới nhất trước.
func (s *IngestService) ListHistory(ctx context.Context, limit int) ([]ingestmodels.UploadHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.M{"uploadedAt": -1}).SetLimit(int64(limit))
	cursor, err := s.history.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	var items []ingestmodels.UploadHistory
	if err := cursor.All(ctx, &items); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return items, nil
}

// finishResult chốt status theo số lỗi và đếm thời gian chạy.
func finishResult(result *ingestdto.UploadResult, start time.Time) *ingestdto.UploadResult {
	result.DurationMs = time.Since(start).Milliseconds()
	switch {
	case len(result.Errors) == 0:
		result.Status = ingestmodels.UploadStatusSuccess
	case result.Inserted+result.Updated > 0:
		result.Status = ingestmodels.UploadStatusPartial
	default:
		result.Status = ingestmodels.UploadStatusFailed
	}
	return result
}
