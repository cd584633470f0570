package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility/metrics"
)

// Engine evaluates every active product for a subject against the subject's
// answer set. Evaluation is pure with respect to the inputs: same rules, same
// answers, same result, regardless of product order or prior calls.
type Engine struct {
	repo    *Repository
	catalog ProductCatalog
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(source RuleSource, catalog ProductCatalog, policy Policy, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:    NewRepository(source),
		catalog: catalog,
		policy:  policy,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClearCache invalidates every cached rule set.
func (e *Engine) ClearCache() { e.repo.ClearCache() }

// EvaluateAll scores every active product for the subject. Products come back
// sorted by product id. A rule fetch failure fails the whole call; a single
// malformed rule does not, it is excluded from its product's totals and
// logged.
func (e *Engine) EvaluateAll(ctx context.Context, subjectID string, answers AnswerSet) ([]ProductEligibility, error) {
	start := time.Now()

	productIDs, err := e.catalog.ListActiveProductIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	sort.Strings(productIDs)

	results := make([]ProductEligibility, 0, len(productIDs))
	for _, productID := range productIDs {
		rules, err := e.repo.Rules(ctx, productID)
		if err != nil {
			return nil, err
		}
		result := e.evaluateProduct(subjectID, productID, rules, answers)
		e.metrics.IncOutcome(productID, result.IsEligible)
		results = append(results, result)
	}

	e.metrics.ObserveEvaluateLatency(time.Since(start))
	return results, nil
}

// evaluateProduct scores one product's rule set. Rules arrive sorted by
// priority; details preserve that order.
func (e *Engine) evaluateProduct(subjectID, productID string, rules []Rule, answers AnswerSet) ProductEligibility {
	raw := make(map[string]bool, len(rules))
	invalid := make(map[string]string)

	for _, rule := range rules {
		if rule.Malformed != "" {
			invalid[rule.ID] = rule.Malformed
			continue
		}
		ok, err := EvaluateTree(rule.Condition, rule.Dialect, answers)
		if err != nil {
			invalid[rule.ID] = err.Error()
			continue
		}
		raw[rule.ID] = ok
	}

	gates := resolveDependencies(rules, raw, invalid)
	for id, reason := range gates.invalid {
		if _, exists := invalid[id]; !exists {
			invalid[id] = reason
		}
	}

	var (
		details         = make([]RuleDetail, 0, len(rules))
		satisfiedWeight float64
		totalWeight     float64
		satisfiedCount  int
		totalCount      int
		requiredUnmet   bool
	)
	for _, rule := range rules {
		detail := RuleDetail{RuleID: rule.ID, Weight: rule.Weight}
		switch {
		case invalid[rule.ID] != "":
			detail.Invalid = true
			e.metrics.IncMalformedRule()
			e.logger.Warn("excluding rule from scoring",
				"subject_id", subjectID,
				"product_id", productID,
				"rule_id", rule.ID,
				"reason", invalid[rule.ID],
			)
		case gates.gated[rule.ID]:
			detail.Gated = true
		default:
			totalCount++
			totalWeight += rule.Weight
			detail.Satisfied = gates.satisfied[rule.ID]
			if detail.Satisfied {
				satisfiedCount++
				satisfiedWeight += rule.Weight
			} else if rule.Required {
				requiredUnmet = true
			}
		}
		details = append(details, detail)
	}

	score := 0.0
	if totalWeight > 0 {
		score = satisfiedWeight / totalWeight
	}
	eligible := e.policy.Eligible(score, satisfiedCount, totalCount) && !requiredUnmet

	return ProductEligibility{
		ProductID:      productID,
		Score:          score,
		SatisfiedCount: satisfiedCount,
		TotalCount:     totalCount,
		IsEligible:     eligible,
		Details:        details,
	}
}
