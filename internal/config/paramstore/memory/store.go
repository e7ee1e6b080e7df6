// Package memory is an in-process parameter store for development and tests.
package memory

import (
	"context"
	"sync"

	"idproof/pkg/platform/sentinel"
)

type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

func New(values map[string]string) *Store {
	s := &Store{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *Store) Load(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}

func (s *Store) Put(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}
