package repository

import (
	"context"
	"sync"
	"time"

	"studytrack-backend/internal/models"
)

// MemoryUserStore keeps users registered while the durable store was down.
type MemoryUserStore struct {
	mu    sync.RWMutex
	ids   *VolatileIDGenerator
	now   func() time.Time
	users []models.User
}

func NewMemoryUserStore(ids *VolatileIDGenerator) *MemoryUserStore {
	return &MemoryUserStore{ids: ids, now: time.Now}
}

// Reset drops every user. Tests only.
func (m *MemoryUserStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = nil
}

func (m *MemoryUserStore) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	u.ID = m.ids.Next()
	u.CreatedAt = m.now()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	m.users = append(m.users, *u)
	return nil
}

func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserStore) ListAll(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append(make([]models.User, 0, len(m.users)), m.users...), nil
}
