package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is a map backed Store with slug uniqueness for content records.
type memStore[T any, P Model[T]] struct {
	mu   sync.Mutex
	rows map[uuid.UUID]T
	err  error
}

func newMemStore[T any, P Model[T]]() *memStore[T, P] {
	return &memStore[T, P]{rows: map[uuid.UUID]T{}}
}

func (m *memStore[T, P]) List(ctx context.Context, q database.ListQuery) ([]T, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	out := []T{}
	for _, row := range m.rows {
		out = append(out, row)
	}
	total := int64(len(out))
	if q.Offset >= len(out) {
		return []T{}, total, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (m *memStore[T, P]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (m *memStore[T, P]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if column != "slug" {
		return nil, errors.New("memStore: unsupported column " + column)
	}
	for _, row := range m.rows {
		if rec, ok := any(P(&row)).(recordHolder); ok && rec.RecordFields().Slug == value {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore[T, P]) Add(ctx context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	base := any(P(record)).(baseHolder).BaseFields()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if m.slugTaken(P(record)) {
		return gorm.ErrDuplicatedKey
	}
	now := time.Now()
	base.CreatedAt, base.UpdatedAt = now, now
	m.rows[base.ID] = *record
	return nil
}

func (m *memStore[T, P]) Update(ctx context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	base := any(P(record)).(baseHolder).BaseFields()
	if _, ok := m.rows[base.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.slugTaken(P(record)) {
		return gorm.ErrDuplicatedKey
	}
	base.UpdatedAt = time.Now()
	m.rows[base.ID] = *record
	return nil
}

func (m *memStore[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore[T, P]) slugTaken(record P) bool {
	rec, ok := any(record).(recordHolder)
	if !ok {
		return false
	}
	for id, row := range m.rows {
		other := any(P(&row)).(recordHolder)
		if id != record.GetID() && other.RecordFields().Slug == rec.RecordFields().Slug {
			return true
		}
	}
	return false
}

type memAudit struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	err     error
}

func (m *memAudit) Add(ctx context.Context, entry *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *memAudit) last() *models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[len(m.entries)-1]
}

// steppingClock is a clock tests move by hand.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
