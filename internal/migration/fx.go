package migration

import (
	"strings"

	"github.com/smallbiznis/mymart/internal/config"
	"github.com/smallbiznis/mymart/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := AutoMigrate(conn); err != nil {
			return err
		}

		if cfg.SeedCatalog {
			log.Info("seeding demo catalog")
			return seed.EnsureCatalog(conn)
		}
		return nil
	}),
)
