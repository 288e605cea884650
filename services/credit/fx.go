package credit

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("credit.service",
	fx.Provide(NewService),
	fx.Invoke(Migrate),
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Balance{}, &LedgerEntry{}); err != nil {
		zap.L().Error("failed to migrate credit tables", zap.Error(err))
		return err
	}
	return nil
}
