// Package dto - kết quả upload trả về cho client.
package dto

// UploadResult tóm tắt 1 lần import file.
type UploadResult struct {
	FileType   string   `json:"fileType"`
	FileName   string   `json:"fileName"`
	Total      int      `json:"total"`
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
	Status     string   `json:"status"`
	DurationMs int64    `json:"durationMs"`
}
