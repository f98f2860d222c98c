package users

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	byID   map[int64]*User
	nextID int64
}

func NewInMemoryStore() Store {
	return &memoryStore{byID: map[int64]*User{}, nextID: 1}
}

func (m *memoryStore) Create(ctx context.Context, phone, password string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findByPhone(phone) != nil {
		return User{}, ErrExists
	}
	u := &User{ID: m.nextID, Phone: phone, Password: password, Paid: "no", Courses: []int64{}}
	m.nextID++
	m.byID[u.ID] = u
	return *u, nil
}

func (m *memoryStore) Authenticate(ctx context.Context, phone, password string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u := m.findByPhone(phone)
	if u == nil || u.Password != password {
		return User{}, ErrInvalidCredentials
	}
	return *u, nil
}

func (m *memoryStore) List(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) Get(ctx context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

func (m *memoryStore) UpdatePhone(ctx context.Context, id int64, phone string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Phone = phone
	return *u, nil
}

func (m *memoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryStore) Enroll(ctx context.Context, phone string, courseIDs []int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findByPhone(phone)
	if u == nil {
		return nil, ErrNotFound
	}
	seen := map[int64]struct{}{}
	for _, id := range u.Courses {
		seen[id] = struct{}{}
	}
	for _, id := range courseIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			u.Courses = append(u.Courses, id)
		}
	}
	sort.Slice(u.Courses, func(i, j int) bool { return u.Courses[i] < u.Courses[j] })
	out := append([]int64{}, u.Courses...)
	return out, nil
}

func (m *memoryStore) CourseIDs(ctx context.Context, phone string) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u := m.findByPhone(phone)
	if u == nil {
		return nil, ErrNotFound
	}
	return append([]int64{}, u.Courses...), nil
}

// findByPhone; callers hold the lock.
func (m *memoryStore) findByPhone(phone string) *User {
	for _, u := range m.byID {
		if u.Phone == phone {
			return u
		}
	}
	return nil
}
