package main

import (
	"lavpop_bi/config"
	"lavpop_bi/internal/database"
	"lavpop_bi/internal/global"
	"lavpop_bi/internal/logger"
)

// InitGlobal khởi tạo các biến toàn cục theo thứ tự phụ thuộc.
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// initColNames gán tên collection cho từng domain.
func initColNames() {
	global.ColNames.Transactions = "transactions"
	global.ColNames.Customers = "customers"
	global.ColNames.Segmentation = "segmentation"
	global.ColNames.AppSettings = "app_settings"
	global.ColNames.UploadHistory = "upload_history"
	global.ColNames.RetentionSnapshots = "retention_snapshots"
}

// initValidator khởi tạo validator singleton với các rule tùy chỉnh.
func initValidator() {
	global.InitValidator()
	logger.GetAppLogger().Info("Validator initialized successfully")
}

// initConfig đọc .env + environment variables vào global.ServerConfig.
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to load configuration: %v", err)
	}
	global.ServerConfig = cfg
	logger.GetAppLogger().Info("Configuration loaded successfully")
}

// initDatabase_MongoDB kết nối MongoDB và lưu client vào global.
func initDatabase_MongoDB() {
	client, err := database.GetInstance(global.ServerConfig)
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to connect to MongoDB: %v", err)
	}
	global.MongoDB_Session = client
}
