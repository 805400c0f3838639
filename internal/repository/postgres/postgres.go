package postgres

import (
	"FTJ-Ads-Backend/internal/domain"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Event Methods ---

// SaveEvent сохраняет одно событие телеметрии
func (s *PostgresStorage) SaveEvent(ctx context.Context, event *domain.AdEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("failed to save ad event",
			zap.String("type", event.Type),
			zap.String("placement", event.Placement),
			zap.Error(err))
		return fmt.Errorf("failed to save ad event: %w", err)
	}
	return nil
}

// SaveEventBatch сохраняет пачку событий одним insert-ом
func (s *PostgresStorage) SaveEventBatch(ctx context.Context, events []*domain.AdEvent) error {
	if len(events) == 0 {
		return nil
	}

	if err := s.db.WithContext(ctx).Create(&events).Error; err != nil {
		s.log.Error("failed to save ad event batch",
			zap.Int("batch_size", len(events)),
			zap.Error(err))
		return fmt.Errorf("failed to save ad event batch: %w", err)
	}

	s.log.Debug("saved ad event batch", zap.Int("batch_size", len(events)))
	return nil
}

// ListRecentEvents возвращает последние события, новые первыми
func (s *PostgresStorage) ListRecentEvents(ctx context.Context, limit int) ([]*domain.AdEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var events []*domain.AdEvent
	err := s.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		s.log.Error("failed to list recent events", zap.Error(err))
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}

	return events, nil
}

// --- Aggregation Methods ---

type countRow struct {
	Key   *string
	Count int64
}

// CountsByType возвращает количество событий по видам
func (s *PostgresStorage) CountsByType(ctx context.Context, placement string, since time.Time) (map[string]int64, error) {
	query := s.db.WithContext(ctx).
		Model(&domain.AdEvent{}).
		Select("type AS key, COUNT(*) AS count").
		Where("occurred_at >= ?", since).
		Group("type")
	if placement != "" {
		query = query.Where("placement = ?", placement)
	}

	return s.collectCounts(query, "type")
}

// CountsByPlacement возвращает количество событий по слотам
func (s *PostgresStorage) CountsByPlacement(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := s.db.WithContext(ctx).
		Model(&domain.AdEvent{}).
		Select("placement AS key, COUNT(*) AS count").
		Where("occurred_at >= ? AND placement <> ''", since).
		Group("placement")

	return s.collectCounts(query, "placement")
}

// CountsByDevice возвращает количество событий по типам устройств
func (s *PostgresStorage) CountsByDevice(ctx context.Context, placement string, since time.Time) (map[string]int64, error) {
	query := s.db.WithContext(ctx).
		Model(&domain.AdEvent{}).
		Select("device_type AS key, COUNT(*) AS count").
		Where("occurred_at >= ?", since).
		Group("device_type")
	if placement != "" {
		query = query.Where("placement = ?", placement)
	}

	return s.collectCounts(query, "device_type")
}

func (s *PostgresStorage) collectCounts(query *gorm.DB, dimension string) (map[string]int64, error) {
	var rows []countRow
	if err := query.Scan(&rows).Error; err != nil {
		s.log.Error("failed to aggregate events", zap.String("dimension", dimension), zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate events by %s: %w", dimension, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		key := "unknown"
		if row.Key != nil && *row.Key != "" {
			key = *row.Key
		}
		counts[key] = row.Count
	}
	return counts, nil
}
