package repository

import (
	"FTJ-Ads-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

// Storage is the reporting store for collected ad telemetry.
type Storage interface {
	// Event methods
	SaveEvent(ctx context.Context, event *domain.AdEvent) error
	SaveEventBatch(ctx context.Context, events []*domain.AdEvent) error
	ListRecentEvents(ctx context.Context, limit int) ([]*domain.AdEvent, error)

	// Aggregation methods
	CountsByType(ctx context.Context, placement string, since time.Time) (map[string]int64, error)
	CountsByPlacement(ctx context.Context, since time.Time) (map[string]int64, error)
	CountsByDevice(ctx context.Context, placement string, since time.Time) (map[string]int64, error)
}
