// Package settingsvc - Service app settings với cache TTL 5 phút.
// Settings được đọc ở mọi lần import sales và mọi lần recompute, nên cache
// in-memory tránh 1 query Mongo per request; TTL ngắn để thay đổi qua API
// có hiệu lực trong vài phút.
package settingsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	settingsmodels "lavpop_bi/internal/api/settings/models"
	"lavpop_bi/internal/common"
	"lavpop_bi/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cacheTTL là thời gian sống của settings cache.
const cacheTTL = 5 * time.Minute

// SettingsService đọc/ghi app_settings.
type SettingsService struct {
	collection *mongo.Collection

	mu        sync.RWMutex
	cached    *settingsmodels.AppSettings
	expiresAt time.Time
}

// NewSettingsService tạo SettingsService mới.
func NewSettingsService() (*SettingsService, error) {
	coll, exist := global.RegistryCollections.Get(global.ColNames.AppSettings)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.ColNames.AppSettings, common.ErrNotFound)
	}
	return &SettingsService{collection: coll}, nil
}

// defaults trả về settings mặc định từ config khi chưa có document.
func defaults() *settingsmodels.AppSettings {
	s := &settingsmodels.AppSettings{
		ID:                settingsmodels.AppSettingsID,
		CashbackPercent:   7.5,
		CashbackStartDate: "2024-06-01",
		LostThresholdDays: 60,
	}
	if cfg := global.ServerConfig; cfg != nil {
		s.CashbackPercent = cfg.Cashback_DefaultPercent
		s.CashbackStartDate = cfg.Cashback_DefaultStartDate
		s.LostThresholdDays = cfg.Retention_LostThresholdDays
	}
	return s
}

// Get trả về settings hiện hành: cache → Mongo → defaults.
// Document thiếu field (0/rỗng) thì field đó nhận giá trị mặc định.
func (s *SettingsService) Get(ctx context.Context) (*settingsmodels.AppSettings, error) {
	s.mu.RLock()
	if s.cached != nil && time.Now().Before(s.expiresAt) {
		cached := *s.cached
		s.mu.RUnlock()
		return &cached, nil
	}
	s.mu.RUnlock()

	settings := defaults()
	var doc settingsmodels.AppSettings
	err := s.collection.FindOne(ctx, bson.M{"_id": settingsmodels.AppSettingsID}).Decode(&doc)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, common.ConvertMongoError(err)
	}
	if err == nil {
		if doc.CashbackPercent > 0 {
			settings.CashbackPercent = doc.CashbackPercent
		}
		if doc.CashbackStartDate != "" {
			settings.CashbackStartDate = doc.CashbackStartDate
		}
		if doc.LostThresholdDays > 0 {
			settings.LostThresholdDays = doc.LostThresholdDays
		}
		settings.UpdatedAt = doc.UpdatedAt
	}

	s.mu.Lock()
	s.cached = settings
	s.expiresAt = time.Now().Add(cacheTTL)
	s.mu.Unlock()

	cached := *settings
	return &cached, nil
}

// Update upsert document settings và invalidate cache ngay.
func (s *SettingsService) Update(ctx context.Context, settings *settingsmodels.AppSettings) (*settingsmodels.AppSettings, error) {
	settings.ID = settingsmodels.AppSettingsID
	settings.UpdatedAt = time.Now().UnixMilli()

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": settingsmodels.AppSettingsID}, settings, opts); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	s.mu.Lock()
	s.cached = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	return s.Get(ctx)
}

// InvalidateCache xóa cache thủ công (dùng trong test).
func (s *SettingsService) InvalidateCache() {
	s.mu.Lock()
	s.cached = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}
