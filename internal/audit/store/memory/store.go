package memory

import (
	"context"
	"sync"

	"idproof/internal/audit"
)

// InMemoryStore keeps summaries in insertion order.
type InMemoryStore struct {
	mu        sync.RWMutex
	summaries []audit.Summary
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, summary audit.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	return nil
}

func (s *InMemoryStore) ListByTrace(_ context.Context, traceID string) ([]audit.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Summary
	for _, summary := range s.summaries {
		if summary.TraceID == traceID {
			out = append(out, summary)
		}
	}
	return out, nil
}

// ListRecent returns up to limit most recent summaries, newest last.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := max(len(s.summaries)-limit, 0)
	return append([]audit.Summary{}, s.summaries[start:]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = nil
}
