package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"studytrack-backend/internal/models"
)

// MemorySessionStore is the volatile session store. It lives for the process
// lifetime; nothing survives a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	ids      *VolatileIDGenerator
	now      func() time.Time
	sessions []models.StudySession
}

func NewMemorySessionStore(ids *VolatileIDGenerator) *MemorySessionStore {
	return &MemorySessionStore{ids: ids, now: time.Now}
}

// Reset drops every session. Tests only.
func (m *MemorySessionStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
}

func (m *MemorySessionStore) FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.StudySession, 0)
	for _, s := range m.sessions {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemorySessionStore) FindAll(ctx context.Context) ([]models.StudySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append(make([]models.StudySession, 0, len(m.sessions)), m.sessions...)
	sortNewestFirst(out)
	return out, nil
}

func (m *MemorySessionStore) Create(ctx context.Context, s *models.StudySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s.ID = m.ids.Next()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.OccurredAt.IsZero() {
		s.OccurredAt = now
	}
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *MemorySessionStore) Update(ctx context.Context, id, ownerID string, patch models.StudySessionPatch) (*models.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 || m.sessions[i].OwnerID != ownerID {
		return nil, ErrNotFound
	}

	patch.Apply(&m.sessions[i])
	m.sessions[i].UpdatedAt = m.now()
	updated := m.sessions[i]
	return &updated, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 || m.sessions[i].OwnerID != ownerID {
		return ErrNotFound
	}
	m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
	return nil
}

func (m *MemorySessionStore) DeleteAny(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
	return nil
}

func (m *MemorySessionStore) indexOf(id string) int {
	for i, s := range m.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(sessions []models.StudySession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Day().After(sessions[j].Day())
	})
}
