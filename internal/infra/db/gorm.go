package db

import (
	"fmt"

	"orderdesk/internal/config"
	"orderdesk/internal/domain/model"
	"orderdesk/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	return Open(cfg.DSN(), cfg.LogLevel)
}

func Open(dsn, logLevel string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logger.GormLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return gdb, nil
}

// 参照順に並べる
var models = []any{
	&model.User{},
	&model.Address{},
	&model.Dish{},
	&model.DishAddon{},
	&model.DishVariant{},
	&model.Package{},
	&model.PackageEntry{},
	&model.Table{},
	&model.TimeSlot{},
	&model.Cart{},
	&model.CartItem{},
	&model.CartPackageItem{},
	&model.Order{},
	&model.OrderItem{},
	&model.OrderPackageItem{},
	&model.AuditLog{},
}

// Migrate はテーブルを作成・更新する。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
