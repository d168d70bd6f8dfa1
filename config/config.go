package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Bao gồm thông tin kết nối cơ sở dữ liệu và cấu hình HTTP server.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Port HTTP server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URI kết nối MongoDB
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"lavpop_bi"`     // Tên database chính
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting
	// Cashback mặc định khi app_settings chưa có document (có thể đổi runtime qua API settings)
	Cashback_DefaultPercent   float64 `env:"CASHBACK_DEFAULT_PERCENT" envDefault:"7.5"`      // Phần trăm cashback mặc định
	Cashback_DefaultStartDate string  `env:"CASHBACK_DEFAULT_START_DATE" envDefault:"2024-06-01"` // Ngày bắt đầu chương trình (YYYY-MM-DD)
	// Ngưỡng phân loại rủi ro (ngày) — mặc định theo nhịp ghé tiệm nhiều ngày của giặt ủi
	Retention_LostThresholdDays int `env:"RETENTION_LOST_THRESHOLD_DAYS" envDefault:"60"` // Quá số ngày này không ghé → Perdido
}

// NewConfig đọc file .env (nếu có) và parse environment variables vào Configuration.
// Tìm file .env từ thư mục hiện tại đi lên tối đa 3 cấp (chạy từ cmd/server hoặc root đều được).
func NewConfig() (*Configuration, error) {
	loadDotEnv()

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment variables: %w", err)
	}
	return cfg, nil
}

// loadDotEnv tìm và load file .env gần nhất. Không có file .env không phải là lỗi
// (môi trường production thường set env vars trực tiếp).
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
