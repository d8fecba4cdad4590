// storage/postgres.go
package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Gin_postgres_redis_library_tool/models"
)

// PostgresGateway keeps the snapshot in two Postgres tables. It is still a
// snapshot store, not a record store: Load selects everything and Commit
// rewrites everything inside one transaction.
type PostgresGateway struct {
	db *gorm.DB
}

func NewPostgresGateway(dsn string) (*PostgresGateway, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&models.Book{}, &models.Loan{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot tables: %w", err)
	}
	return &PostgresGateway{db: db}, nil
}

func (g *PostgresGateway) Load(ctx context.Context) (models.Snapshot, error) {
	snap := models.Empty()

	if err := g.db.WithContext(ctx).Order("id").Find(&snap.Books).Error; err != nil {
		return models.Snapshot{}, fmt.Errorf("load books: %w", err)
	}
	if err := g.db.WithContext(ctx).Order("issued_at").Find(&snap.Loans).Error; err != nil {
		return models.Snapshot{}, fmt.Errorf("load loans: %w", err)
	}
	return snap, nil
}

func (g *PostgresGateway) Commit(ctx context.Context, snap models.Snapshot) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Loan{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Book{}).Error; err != nil {
			return err
		}
		if len(snap.Books) > 0 {
			if err := tx.Create(&snap.Books).Error; err != nil {
				return err
			}
		}
		if len(snap.Loans) > 0 {
			if err := tx.Create(&snap.Loans).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
