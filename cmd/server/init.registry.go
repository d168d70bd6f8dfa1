package main

import (
	"context"
	"time"

	"lavpop_bi/config"
	"lavpop_bi/internal/database"
	"lavpop_bi/internal/global"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// InitRegistry đăng ký collections vào registry và tạo index.
func InitRegistry() {
	if err := InitCollections(global.MongoDB_Session, global.ServerConfig); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.EnsureDomainIndexes(ctx, db); err != nil {
		logrus.Fatalf("Failed to create indexes: %v", err)
	}
	logrus.Info("Domain indexes ensured")
}

// InitCollections khởi tạo và đăng ký các collections MongoDB
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)
	colNames := []string{
		global.ColNames.Transactions,
		global.ColNames.Customers,
		global.ColNames.Segmentation,
		global.ColNames.AppSettings,
		global.ColNames.UploadHistory,
		global.ColNames.RetentionSnapshots,
	}

	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Errorf("Collection %s already registered", name)
		}
	}
	return nil
}
