package eligibility

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRuleSource struct {
	rules   map[string][]Rule
	err     error
	fetches atomic.Int64
}

func (s *stubRuleSource) Rules(_ context.Context, productID string) ([]Rule, error) {
	s.fetches.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.rules[productID], nil
}

type stubCatalog struct {
	ids []string
	err error
}

func (s *stubCatalog) ListActiveProductIDs(context.Context) ([]string, error) {
	return s.ids, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(source RuleSource, catalog ProductCatalog, policy Policy) *Engine {
	return NewEngine(source, catalog, policy, WithLogger(testLogger()))
}

func simpleRule(id, productID, qid string, expected any, weight float64) Rule {
	return NormalizeRule(Rule{
		ID:        id,
		ProductID: productID,
		Condition: leaf(qid, "equals", expected),
		Weight:    weight,
	})
}

func Test_EvaluateAll_ScoresAndSortsProducts(t *testing.T) {
	source := &stubRuleSource{rules: map[string][]Rule{
		"TICPE": {
			simpleRule("r1", "TICPE", "possede_vehicules", "Oui", 3),
			simpleRule("r2", "TICPE", "secteur", "Secteur Agricole", 1),
		},
		"DFS": {
			simpleRule("r3", "DFS", "secteur", "Taxi / VTC", 2),
		},
	}}
	catalog := &stubCatalog{ids: []string{"TICPE", "DFS"}}
	engine := newTestEngine(source, catalog, ThresholdPolicy{Threshold: 0.6})

	answers := answersWith(map[string]any{
		"possede_vehicules": "Oui",
		"secteur":           "BTP / Travaux publics",
	})
	results, err := engine.EvaluateAll(context.Background(), "subject-1", answers)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by product id regardless of catalog order.
	assert.Equal(t, "DFS", results[0].ProductID)
	assert.Equal(t, "TICPE", results[1].ProductID)

	dfs := results[0]
	assert.Equal(t, 0.0, dfs.Score)
	assert.False(t, dfs.IsEligible)
	assert.Equal(t, 0, dfs.SatisfiedCount)
	assert.Equal(t, 1, dfs.TotalCount)

	ticpe := results[1]
	assert.InDelta(t, 0.75, ticpe.Score, 1e-9)
	assert.True(t, ticpe.IsEligible)
	assert.Equal(t, 1, ticpe.SatisfiedCount)
	assert.Equal(t, 2, ticpe.TotalCount)
	require.Len(t, ticpe.Details, 2)
	assert.True(t, ticpe.Details[0].Satisfied)
	assert.False(t, ticpe.Details[1].Satisfied)
}

func Test_EvaluateAll_IsDeterministic(t *testing.T) {
	source := &stubRuleSource{rules: map[string][]Rule{
		"A": {simpleRule("r1", "A", "q", "v", 1)},
		"B": {simpleRule("r2", "B", "q", "v", 1)},
	}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"B", "A"}}, ThresholdPolicy{Threshold: 0.6})
	answers := answersWith(map[string]any{"q": "v"})

	first, err := engine.EvaluateAll(context.Background(), "s", answers)
	require.NoError(t, err)
	second, err := engine.EvaluateAll(context.Background(), "s", answers)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func Test_EvaluateAll_ZeroRuleProductIsIneligible(t *testing.T) {
	source := &stubRuleSource{rules: map[string][]Rule{}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"EMPTY"}}, ThresholdPolicy{Threshold: 0.0})

	results, err := engine.EvaluateAll(context.Background(), "s", AnswerSet{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
	assert.False(t, results[0].IsEligible, "a product with no counted rules is never eligible")
}

func Test_EvaluateAll_RuleFetchFailurePropagates(t *testing.T) {
	source := &stubRuleSource{err: errors.New("rule backend down")}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"TICPE"}}, ThresholdPolicy{Threshold: 0.6})

	_, err := engine.EvaluateAll(context.Background(), "s", AnswerSet{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule backend down")
}

func Test_EvaluateAll_CatalogFailurePropagates(t *testing.T) {
	engine := newTestEngine(&stubRuleSource{}, &stubCatalog{err: errors.New("catalog down")}, ThresholdPolicy{})
	_, err := engine.EvaluateAll(context.Background(), "s", AnswerSet{})
	require.Error(t, err)
}

func Test_EvaluateAll_MalformedRuleIsExcludedNotFatal(t *testing.T) {
	bad := NormalizeRule(Rule{
		ID:        "bad",
		ProductID: "P",
		Condition: leaf("q", "regex_match", "v"),
		Weight:    5,
	})
	good := simpleRule("good", "P", "q", "v", 1)
	source := &stubRuleSource{rules: map[string][]Rule{"P": {bad, good}}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"P"}}, ThresholdPolicy{Threshold: 0.6})

	results, err := engine.EvaluateAll(context.Background(), "s", answersWith(map[string]any{"q": "v"}))
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	// The malformed rule contributes no weight; the good rule carries the score.
	assert.Equal(t, 1.0, result.Score)
	assert.True(t, result.IsEligible)
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Details, 2)
	var invalidSeen bool
	for _, d := range result.Details {
		if d.RuleID == "bad" {
			invalidSeen = true
			assert.True(t, d.Invalid)
			assert.False(t, d.Satisfied)
		}
	}
	assert.True(t, invalidSeen)
}

func Test_EvaluateAll_StructuralTreeErrorIsExcludedNotFatal(t *testing.T) {
	// An empty combined node passes load-time normalization but fails the
	// tree walk.
	hollow := NormalizeRule(Rule{
		ID:        "hollow",
		ProductID: "P",
		Condition: Condition{Combinator: CombineAnd},
		Weight:    5,
	})
	good := simpleRule("good", "P", "q", "v", 1)
	source := &stubRuleSource{rules: map[string][]Rule{"P": {hollow, good}}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"P"}}, ThresholdPolicy{Threshold: 0.6})

	results, err := engine.EvaluateAll(context.Background(), "s", answersWith(map[string]any{"q": "v"}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, results[0].Score)
	assert.True(t, results[0].IsEligible)
}

func Test_EvaluateAll_DependencyGatingExcludesFromTotals(t *testing.T) {
	base := NormalizeRule(Rule{
		ID:        "base",
		ProductID: "P",
		Condition: leaf("has_fleet", "=", "Oui"),
		Weight:    1,
	})
	dependent := NormalizeRule(Rule{
		ID:           "dependent",
		ProductID:    "P",
		Condition:    leaf("litres", ">", 100),
		Weight:       3,
		Dependencies: []string{"base"},
	})
	other := NormalizeRule(Rule{
		ID:        "other",
		ProductID: "P",
		Condition: leaf("secteur", "=", "Taxi / VTC"),
		Weight:    1,
	})
	source := &stubRuleSource{rules: map[string][]Rule{"P": {base, dependent, other}}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"P"}}, ThresholdPolicy{Threshold: 0.6})

	// Prerequisite unmet: the dependent rule's weight vanishes from totals,
	// it does not count as a failure.
	answers := answersWith(map[string]any{
		"has_fleet": "Non",
		"litres":    float64(500),
		"secteur":   "Taxi / VTC",
	})
	results, err := engine.EvaluateAll(context.Background(), "s", answers)
	require.NoError(t, err)

	result := results[0]
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.SatisfiedCount)
	assert.InDelta(t, 0.5, result.Score, 1e-9)

	var gated bool
	for _, d := range result.Details {
		if d.RuleID == "dependent" {
			gated = d.Gated
		}
	}
	assert.True(t, gated)

	// Prerequisite met: the dependent rule counts fully.
	answers["has_fleet"] = Answer{QuestionID: "has_fleet", Value: "Oui"}
	results, err = engine.EvaluateAll(context.Background(), "s", answers)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, 3, results[0].TotalCount)
}

func Test_EvaluateAll_RequiredRuleForcesIneligible(t *testing.T) {
	required := NormalizeRule(Rule{
		ID:        "must",
		ProductID: "P",
		Condition: leaf("consent", "equals", "Oui"),
		Weight:    1,
		Required:  true,
	})
	heavy := simpleRule("heavy", "P", "q", "v", 9)
	source := &stubRuleSource{rules: map[string][]Rule{"P": {required, heavy}}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"P"}}, ThresholdPolicy{Threshold: 0.6})

	answers := answersWith(map[string]any{"q": "v", "consent": "Non"})
	results, err := engine.EvaluateAll(context.Background(), "s", answers)
	require.NoError(t, err)

	// Score clears the threshold but the required rule failed.
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.False(t, results[0].IsEligible)

	answers["consent"] = Answer{QuestionID: "consent", Value: "Oui"}
	results, err = engine.EvaluateAll(context.Background(), "s", answers)
	require.NoError(t, err)
	assert.True(t, results[0].IsEligible)
}

func Test_EvaluateAll_AllRulesPolicy(t *testing.T) {
	source := &stubRuleSource{rules: map[string][]Rule{
		"P": {
			simpleRule("r1", "P", "a", "1", 1),
			simpleRule("r2", "P", "b", "2", 1),
		},
	}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"P"}}, AllRulesPolicy{})

	results, err := engine.EvaluateAll(context.Background(), "s", answersWith(map[string]any{"a": "1"}))
	require.NoError(t, err)
	assert.False(t, results[0].IsEligible)

	results, err = engine.EvaluateAll(context.Background(), "s", answersWith(map[string]any{"a": "1", "b": "2"}))
	require.NoError(t, err)
	assert.True(t, results[0].IsEligible)
}

func Test_Engine_RuleCacheAndClear(t *testing.T) {
	source := &stubRuleSource{rules: map[string][]Rule{
		"P": {simpleRule("r1", "P", "q", "v", 1)},
	}}
	engine := newTestEngine(source, &stubCatalog{ids: []string{"P"}}, ThresholdPolicy{Threshold: 0.6})

	ctx := context.Background()
	answers := answersWith(map[string]any{"q": "v"})
	_, err := engine.EvaluateAll(ctx, "s", answers)
	require.NoError(t, err)
	_, err = engine.EvaluateAll(ctx, "s", answers)
	require.NoError(t, err)
	assert.Equal(t, int64(1), source.fetches.Load(), "second evaluation must hit the cache")

	engine.ClearCache()
	_, err = engine.EvaluateAll(ctx, "s", answers)
	require.NoError(t, err)
	assert.Equal(t, int64(2), source.fetches.Load(), "ClearCache must force a refetch")
}
