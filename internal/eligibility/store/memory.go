package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/sentinel"
)

// In-memory stores used by tests and the no-database deployment mode. All of
// them are safe for concurrent use.

// MemoryRuleSource serves rule sets from a map keyed by product id.
type MemoryRuleSource struct {
	mu    sync.RWMutex
	rules map[string][]eligibility.Rule
}

func NewMemoryRuleSource() *MemoryRuleSource {
	return &MemoryRuleSource{rules: make(map[string][]eligibility.Rule)}
}

// SetRules replaces the rule set for a product.
func (s *MemoryRuleSource) SetRules(productID string, rules []eligibility.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[productID] = append([]eligibility.Rule(nil), rules...)
}

func (s *MemoryRuleSource) Rules(_ context.Context, productID string) ([]eligibility.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]eligibility.Rule(nil), s.rules[productID]...), nil
}

// MemoryCatalog lists a fixed set of active products.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]bool
}

func NewMemoryCatalog(productIDs ...string) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[string]bool, len(productIDs))}
	for _, id := range productIDs {
		c.products[id] = true
	}
	return c
}

// SetActive adds or removes a product from the active set.
func (c *MemoryCatalog) SetActive(productID string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if active {
		c.products[productID] = true
	} else {
		delete(c.products, productID)
	}
}

func (c *MemoryCatalog) ListActiveProductIDs(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MemoryAnswerStore keeps per-subject answer sets. Load on an unknown subject
// returns an empty set, not an error: a first submission has nothing stored
// yet.
type MemoryAnswerStore struct {
	mu      sync.RWMutex
	answers map[string]eligibility.AnswerSet
}

func NewMemoryAnswerStore() *MemoryAnswerStore {
	return &MemoryAnswerStore{answers: make(map[string]eligibility.AnswerSet)}
}

func (s *MemoryAnswerStore) Load(_ context.Context, subjectID string) (eligibility.AnswerSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.answers[subjectID]
	if !ok {
		return eligibility.AnswerSet{}, nil
	}
	return set.Clone(), nil
}

// SaveAnswers merges a batch into the subject's stored set, last write wins
// per question id.
func (s *MemoryAnswerStore) SaveAnswers(_ context.Context, subjectID string, answers []eligibility.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.answers[subjectID]
	if !ok {
		set = make(eligibility.AnswerSet)
		s.answers[subjectID] = set
	}
	set.Merge(answers)
	return nil
}

// MemoryResultStore keeps the latest evaluation per subject.
type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[string][]eligibility.ProductEligibility
}

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{results: make(map[string][]eligibility.ProductEligibility)}
}

func (s *MemoryResultStore) Persist(_ context.Context, subjectID string, results []eligibility.ProductEligibility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[subjectID] = append([]eligibility.ProductEligibility(nil), results...)
	return nil
}

// Latest returns the most recently persisted evaluation for a subject.
func (s *MemoryResultStore) Latest(_ context.Context, subjectID string) ([]eligibility.ProductEligibility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results, ok := s.results[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]eligibility.ProductEligibility(nil), results...), nil
}
