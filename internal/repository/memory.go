package repository

import (
	"context"
	"sync"
	"time"

	"eclat/internal/models"
)

type memoryEntry struct {
	day       *models.DaySchedule
	expiresAt time.Time
}

// MemoryScheduleCache is the in-process fallback when redis is unavailable or
// not configured.
type MemoryScheduleCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemoryScheduleCache(ttl time.Duration) *MemoryScheduleCache {
	if ttl <= 0 {
		ttl = models.DefaultScheduleTTL * time.Second
	}
	return &MemoryScheduleCache{ttl: ttl}
}

func (m *MemoryScheduleCache) GetDay(ctx context.Context, date string) (*models.DaySchedule, error) {
	val, ok := m.entries.Load(date)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if time.Now().After(entry.expiresAt) {
		m.entries.Delete(date)
		return nil, nil
	}
	return entry.day, nil
}

func (m *MemoryScheduleCache) SetDay(ctx context.Context, day *models.DaySchedule) error {
	m.entries.Store(day.Date, memoryEntry{day: day, expiresAt: time.Now().Add(m.ttl)})
	return nil
}

func (m *MemoryScheduleCache) InvalidateDay(ctx context.Context, date string) error {
	m.entries.Delete(date)
	return nil
}

func (m *MemoryScheduleCache) Flush(ctx context.Context) error {
	m.entries.Range(func(key, _ any) bool {
		m.entries.Delete(key)
		return true
	})
	return nil
}
