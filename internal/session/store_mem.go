package session

import (
	"context"
	"sync"
)

// memoryStore mirrors the SQL store's merge semantics for tests and
// offline runs. Users must be registered up front so the not-found path
// behaves the same way.
type memoryStore struct {
	mu    sync.RWMutex
	users map[string]UserTests
}

func NewInMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]UserTests{}}
}

// AddUser creates an empty mapping for a user, as signup does.
func (m *memoryStore) AddUser(phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[phone]; !ok {
		m.users[phone] = UserTests{}
	}
}

func (m *memoryStore) Load(ctx context.Context, phone string) (UserTests, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur, ok := m.users[phone]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cur.Clone(), nil
}

func (m *memoryStore) Save(ctx context.Context, phone string, partial UserTests) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[phone]
	if !ok {
		return ErrUserNotFound
	}
	for id, st := range partial {
		cur[id] = st.Clone()
	}
	return nil
}

func (m *memoryStore) GradeDescriptive(ctx context.Context, phone, testID string, questionIndex int, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[phone]
	if !ok {
		return ErrUserNotFound
	}
	st := cur[testID]
	if st.DescriptiveScores == nil {
		st.DescriptiveScores = map[int]float64{}
	}
	st.DescriptiveScores[questionIndex] = score
	if st.Answers == nil {
		st.Answers = map[int]string{}
	}
	cur[testID] = st
	return nil
}
