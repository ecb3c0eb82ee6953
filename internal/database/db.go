package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tienda-backoffice/internal/config"
	"tienda-backoffice/internal/models"
)

// Connect opens the MySQL connection and syncs the schema. The returned
// handle is injected into services; there is no package-level singleton.
func Connect(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	// The database container is often still warming up when we start.
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after 5 attempts: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connected", zap.String("name", cfg.Name))
	return db, nil
}

// Migrate syncs the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Product{},
		&models.Client{},
		&models.Supplier{},
		&models.Sale{},
		&models.SaleLine{},
		&models.Return{},
		&models.ReturnLine{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderLine{},
		&models.Shift{},
		&models.Attendance{},
	)
}
