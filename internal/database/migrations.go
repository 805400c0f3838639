package database

import (
	"FTJ-Ads-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен: сначала справочники
	models := []interface{}{
		&domain.PlacementRecord{},
		&domain.AdEvent{},
	}

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Info("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData заполняет справочник слотов закрытым набором значений
func SeedData(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database seeding")

	// Проверяем, есть ли уже данные
	var count int64
	db.Model(&domain.PlacementRecord{}).Count(&count)
	if count > 0 {
		log.Info("placements already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	placements := make([]domain.PlacementRecord, 0, len(domain.AllPlacements))
	for _, p := range domain.AllPlacements {
		placements = append(placements, domain.PlacementRecord{Name: string(p)})
	}

	if err := db.Create(&placements).Error; err != nil {
		log.Error("failed to seed placements", zap.Error(err))
		return fmt.Errorf("failed to seed placements: %w", err)
	}

	log.Info("database seeding completed successfully", zap.Int("placements_created", len(placements)))
	return nil
}
