package store

import (
	"encoding/json"
	"sync"
)

// Memory is an in-process Store used in tests and by callers that do not
// need persistence. Records are copied through JSON so callers cannot alias
// stored state.
type Memory[T any] struct {
	mu      sync.Mutex
	data    []byte
	outcome Outcome
}

func NewMemory[T any](items ...T) *Memory[T] {
	m := &Memory[T]{outcome: Empty}
	if len(items) > 0 {
		_ = m.Save(items)
	}
	return m
}

// Corrupt makes the next loads report Malformed.
func (m *Memory[T]) Corrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.outcome = Malformed
}

func (m *Memory[T]) Load() ([]T, Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Memory[T]) load() ([]T, Outcome, error) {
	if m.outcome != OK {
		return nil, m.outcome, nil
	}
	var items []T
	if err := json.Unmarshal(m.data, &items); err != nil {
		return nil, Malformed, err
	}
	return items, OK, nil
}

func (m *Memory[T]) Save(items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(items)
}

func (m *Memory[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	m.data = data
	m.outcome = OK
	return nil
}

func (m *Memory[T]) Update(fn func(items []T) ([]T, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, outcome, _ := m.load()
	if outcome == Malformed {
		return ErrMalformed
	}
	items, err := fn(items)
	if err != nil {
		return err
	}
	return m.save(items)
}
