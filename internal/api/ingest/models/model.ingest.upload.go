package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Loại file upload, sniff theo header CSV.
const (
	FileTypeSales        = "sales"
	FileTypeCustomers    = "customers"
	FileTypeSegmentation = "segmentation"
	FileTypeUnknown      = "unknown"
)

// Trạng thái 1 lần upload.
const (
	UploadStatusSuccess = "success"
	UploadStatusPartial = "partial" // có row lỗi nhưng vẫn import được phần còn lại
	UploadStatusFailed  = "failed"
)

// UploadHistory là bản ghi audit cho 1 lần upload file (upload_history).
// Errors chỉ giữ tối đa 10 lỗi đầu để document không phình.
type UploadHistory struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	FileType string `json:"fileType" bson:"fileType"`
	FileName string `json:"fileName" bson:"fileName"`

	TotalRows int `json:"totalRows" bson:"totalRows"`
	Inserted  int `json:"inserted" bson:"inserted"`
	Updated   int `json:"updated" bson:"updated"`
	Skipped   int `json:"skipped" bson:"skipped"`

	Errors     []string `json:"errors,omitempty" bson:"errors,omitempty"`
	Status     string   `json:"status" bson:"status"`
	DurationMs int64    `json:"durationMs" bson:"durationMs"`
	UploadedAt int64    `json:"uploadedAt" bson:"uploadedAt"` // Unix ms
}
