package catalog

import (
	"context"
	"sort"
	"sync"
)

// memoryStore backs tests and offline runs.
type memoryStore struct {
	mu      sync.RWMutex
	tests   map[int64]Test
	courses map[int64]Course
	nextID  int64
}

func NewInMemoryStore() Store {
	return &memoryStore{
		tests:   map[int64]Test{},
		courses: map[int64]Course{},
		nextID:  1,
	}
}

func (m *memoryStore) ListTests(ctx context.Context) ([]Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Test, 0, len(m.tests))
	for _, t := range m.tests {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) GetTest(ctx context.Context, id int64) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrNotFound
	}
	return t, nil
}

func (m *memoryStore) CreateTest(ctx context.Context, t Test) (Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	m.tests[t.ID] = t
	return t, nil
}

func (m *memoryStore) UpdateTest(ctx context.Context, t Test) (Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[t.ID]; !ok {
		return Test{}, ErrNotFound
	}
	m.tests[t.ID] = t
	return t, nil
}

func (m *memoryStore) DeleteTest(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return ErrNotFound
	}
	delete(m.tests, id)
	return nil
}

func (m *memoryStore) ListCourses(ctx context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) GetCourse(ctx context.Context, id int64) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) GetCourses(ctx context.Context, ids []int64) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.courses[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) CreateCourse(ctx context.Context, c Course) (Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	m.courses[c.ID] = c
	return c, nil
}

func (m *memoryStore) UpdateCourse(ctx context.Context, c Course) (Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[c.ID]; !ok {
		return Course{}, ErrNotFound
	}
	m.courses[c.ID] = c
	return c, nil
}

func (m *memoryStore) DeleteCourse(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return ErrNotFound
	}
	delete(m.courses, id)
	return nil
}
