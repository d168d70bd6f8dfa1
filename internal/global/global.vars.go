package global

import (
	"lavpop_bi/config"
	"lavpop_bi/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName chứa tên các collection trong MongoDB.
// Tất cả dữ liệu nguồn đều denormalized theo doc (CPF đã chuẩn hóa 11 số).
type CollectionName struct {
	Transactions       string // Giao dịch POS (1 document / dòng bán hàng)
	Customers          string // Sổ khách hàng từ POS (registry: ví, ngày đăng ký, tổng mua)
	Segmentation       string // Feed phân khúc RFM tính sẵn (VIP, Frequente, ...)
	AppSettings        string // Cấu hình runtime (cashback percent, start date)
	UploadHistory      string // Lịch sử upload file nguồn (minh bạch hóa ingest)
	RetentionSnapshots string // Snapshot kết quả phân tích retention đã persist
}

// Các biến toàn cục
var Validate *validator.Validate        // Validator singleton cho DTO
var MongoDB_Session *mongo.Client       // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration  // Cấu hình của server
var ColNames CollectionName             // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
