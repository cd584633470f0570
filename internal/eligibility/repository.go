package eligibility

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Repository caches the ordered rule set per product for the process
// lifetime. The cache is read-mostly: population on a cold miss goes through
// singleflight so concurrent evaluations of the same product issue exactly
// one upstream fetch. Entries never expire; ClearCache is the only
// invalidation path.
type Repository struct {
	source RuleSource
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[string][]Rule
}

func NewRepository(source RuleSource) *Repository {
	return &Repository{
		source: source,
		cache:  make(map[string][]Rule),
	}
}

// Rules returns the cached rule set for a product, fetching and normalizing
// the order on first use. The returned slice is shared and must be treated
// as read-only.
func (r *Repository) Rules(ctx context.Context, productID string) ([]Rule, error) {
	r.mu.RLock()
	rules, ok := r.cache[productID]
	r.mu.RUnlock()
	if ok {
		return rules, nil
	}

	v, err, _ := r.group.Do(productID, func() (any, error) {
		fetched, err := r.source.Rules(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("fetch rules for product %s: %w", productID, err)
		}
		SortRules(fetched)
		r.mu.Lock()
		r.cache[productID] = fetched
		r.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Rule), nil
}

// ClearCache drops every cached rule set. The next evaluation per product
// refetches from the source.
func (r *Repository) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string][]Rule)
	r.mu.Unlock()
}
