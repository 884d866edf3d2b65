package memory

import (
	"context"
	"sort"

	"github.com/Vasu1712/scenyx-chat/internal/models"
	"github.com/Vasu1712/scenyx-chat/internal/storage"
)

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emailIndex[u.Email]; taken {
		return storage.ErrDuplicateEmail
	}
	s.lastUserID++
	ts := now()
	u.ID, u.CreatedAt, u.UpdatedAt = s.lastUserID, ts, ts
	s.users[u.ID] = copyUser(u)
	s.emailIndex[u.Email] = u.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyUser(s.users[id]), nil
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[u.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if owner, taken := s.emailIndex[u.Email]; taken && owner != u.ID {
		return storage.ErrDuplicateEmail
	}
	delete(s.emailIndex, current.Email)
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = now()
	s.users[u.ID] = copyUser(u)
	s.emailIndex[u.Email] = u.ID
	return nil
}

func (s *Store) ListUsers(_ context.Context, limit, offset int) ([]*models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := []*models.User{}
	for _, id := range page(ids, limit, offset) {
		users = append(users, copyUser(s.users[id]))
	}
	return users, len(ids), nil
}
