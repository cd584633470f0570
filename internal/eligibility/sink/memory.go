package sink

import (
	"context"
	"sync"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
)

// MemoryChangeSink collects published changes in memory. Used by tests and as
// a drop-in when no broker is configured.
type MemoryChangeSink struct {
	mu      sync.Mutex
	changes []eligibility.Change
}

func NewMemory() *MemoryChangeSink {
	return &MemoryChangeSink{}
}

func (s *MemoryChangeSink) Publish(_ context.Context, changes []eligibility.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, changes...)
	return nil
}

// Changes returns everything published so far.
func (s *MemoryChangeSink) Changes() []eligibility.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]eligibility.Change(nil), s.changes...)
}
