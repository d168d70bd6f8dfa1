// Package database - kết nối MongoDB và index cho các collection nghiệp vụ.
package database

import (
	"context"
	"strings"

	"lavpop_bi/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureDomainIndexes tạo các index cho collection nghiệp vụ. Gọi một lần khi server start.
func EnsureDomainIndexes(ctx context.Context, db *mongo.Database) error {
	// transactions: import_hash unique — chống import trùng
	transactions := db.Collection(global.ColNames.Transactions)
	if _, err := transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "importHash", Value: 1}},
		Options: options.Index().SetName("transaction_import_hash").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// transactions: docCliente — load giao dịch theo khách khi tính analytics
	if _, err := transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "docCliente", Value: 1}, {Key: "dataHora", Value: 1}},
		Options: options.Index().SetName("transaction_doc_datahora"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// transactions: dataHora — lọc theo khoảng thời gian (cohort, acquisition trend)
	if _, err := transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "dataHora", Value: 1}},
		Options: options.Index().SetName("transaction_datahora"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// customers: doc unique — một khách hàng một bản ghi
	customers := db.Collection(global.ColNames.Customers)
	if _, err := customers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "doc", Value: 1}},
		Options: options.Index().SetName("customer_doc").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// segmentation: doc unique — phân khúc RFM theo CPF
	segmentation := db.Collection(global.ColNames.Segmentation)
	if _, err := segmentation.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "doc", Value: 1}},
		Options: options.Index().SetName("segmentation_doc").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// upload_history: uploadedAt desc — list lịch sử upload mới nhất trước
	uploadHistory := db.Collection(global.ColNames.UploadHistory)
	if _, err := uploadHistory.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uploadedAt", Value: -1}},
		Options: options.Index().SetName("upload_history_uploaded_at"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// retention_snapshots: computedAt desc — lấy snapshot mới nhất
	snapshots := db.Collection(global.ColNames.RetentionSnapshots)
	if _, err := snapshots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "computedAt", Value: -1}},
		Options: options.Index().SetName("retention_snapshot_computed_at"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
