package order

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("order.service",
	fx.Provide(NewService),
	fx.Invoke(Migrate),
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Order{}); err != nil {
		zap.L().Error("failed to migrate orders", zap.Error(err))
		return err
	}
	return nil
}
