package memory

import (
	"FTJ-Ads-Backend/internal/domain"
	"context"
	"sync"
	"time"
)

type MemStorage struct {
	mu           sync.RWMutex
	events       []*domain.AdEvent
	eventCounter int64
}

func New() *MemStorage {
	return &MemStorage{}
}

// --- Event Methods ---

func (s *MemStorage) SaveEvent(_ context.Context, event *domain.AdEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(event)
	return nil
}

func (s *MemStorage) SaveEventBatch(_ context.Context, events []*domain.AdEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range events {
		s.saveLocked(event)
	}
	return nil
}

func (s *MemStorage) saveLocked(event *domain.AdEvent) {
	s.eventCounter++
	stored := *event
	stored.ID = s.eventCounter
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.events = append(s.events, &stored)
}

func (s *MemStorage) ListRecentEvents(_ context.Context, limit int) ([]*domain.AdEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}

	// Newest first
	out := make([]*domain.AdEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// --- Aggregation Methods ---

func (s *MemStorage) CountsByType(_ context.Context, placement string, since time.Time) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, event := range s.events {
		if placement != "" && event.Placement != placement {
			continue
		}
		if event.OccurredAt.Before(since) {
			continue
		}
		counts[event.Type]++
	}
	return counts, nil
}

func (s *MemStorage) CountsByPlacement(_ context.Context, since time.Time) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, event := range s.events {
		if event.OccurredAt.Before(since) || event.Placement == "" {
			continue
		}
		counts[event.Placement]++
	}
	return counts, nil
}

func (s *MemStorage) CountsByDevice(_ context.Context, placement string, since time.Time) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, event := range s.events {
		if placement != "" && event.Placement != placement {
			continue
		}
		if event.OccurredAt.Before(since) {
			continue
		}
		counts[event.GetDeviceType()]++
	}
	return counts, nil
}
