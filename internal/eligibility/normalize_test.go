package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseRules_ModernDialect(t *testing.T) {
	payload := []byte(`[
		{
			"id": "r2",
			"productId": "TICPE",
			"ruleType": "simple",
			"conditions": {"questionId": "possede_vehicules", "operator": "equals", "expectedValue": "Oui"},
			"weight": 2,
			"priority": 20
		},
		{
			"id": "r1",
			"productId": "TICPE",
			"ruleType": "combined",
			"conditions": {
				"operator": "AND",
				"children": [
					{"questionId": "secteur", "operator": "includes", "expectedValue": "Transport"},
					{"questionId": "litres_carburant_mois", "operator": "greater_than", "expectedValue": 0}
				]
			},
			"weight": 3,
			"priority": 10
		}
	]`)

	rules, err := ParseRules(payload)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// Ordered by priority.
	assert.Equal(t, "r1", rules[0].ID)
	assert.Equal(t, "r2", rules[1].ID)

	assert.Equal(t, DialectModern, rules[0].Dialect)
	assert.Equal(t, RuleCombined, rules[0].Type)
	assert.Equal(t, CombineAnd, rules[0].Condition.Combinator)
	require.Len(t, rules[0].Condition.Children, 2)
	assert.Equal(t, OpIncludes, rules[0].Condition.Children[0].Operator)
	assert.Equal(t, OpGreaterThan, rules[0].Condition.Children[1].Operator)

	assert.Equal(t, RuleSimple, rules[1].Type)
	assert.Equal(t, OpEquals, rules[1].Condition.Operator)
	assert.Empty(t, rules[1].Malformed)
}

func Test_ParseRules_LegacyDialect(t *testing.T) {
	payload := []byte(`[
		{
			"id": 7,
			"productId": "URSSAF",
			"conditions": {"questionId": "nb_employes_tranche", "operator": "in", "value": ["1 à 5", "6 à 20"]},
			"weight": 5,
			"priority": 1,
			"dependencies": [3]
		}
	]`)

	rules, err := ParseRules(payload)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	rule := rules[0]
	// Numeric ids from legacy rows coerce to strings.
	assert.Equal(t, "7", rule.ID)
	assert.Equal(t, []string{"3"}, rule.Dependencies)
	assert.Equal(t, DialectLegacy, rule.Dialect)
	assert.Equal(t, OpIncludes, rule.Condition.Operator)
	assert.Equal(t, RuleSimple, rule.Type)
	assert.Empty(t, rule.Malformed)
}

func Test_ParseRules_DecodeFailurePropagates(t *testing.T) {
	_, err := ParseRules([]byte(`{"not": "an array"}`))
	require.Error(t, err)
}

func Test_NormalizeRule_TagsUnknownOperator(t *testing.T) {
	rule := NormalizeRule(Rule{
		ID:        "r1",
		Condition: leaf("q", "regex_match", "v"),
		Weight:    1,
	})
	assert.Equal(t, "unknown operator", rule.Malformed)
}

func Test_NormalizeRule_TagsNegativeWeight(t *testing.T) {
	rule := NormalizeRule(Rule{
		ID:        "r1",
		Condition: leaf("q", "equals", "v"),
		Weight:    -1,
	})
	assert.Contains(t, rule.Malformed, "negative weight")
}

func Test_NormalizeRule_TagsMixedDialects(t *testing.T) {
	rule := NormalizeRule(Rule{
		ID: "r1",
		Condition: Condition{
			Combinator: CombineAnd,
			Children: []Condition{
				leaf("a", "equals", "v"),
				leaf("b", ">", 3),
			},
		},
		Weight: 1,
	})
	assert.Equal(t, "mixed operator dialects", rule.Malformed)
}

func Test_NormalizeRule_TagsDependenciesOnModernRule(t *testing.T) {
	rule := NormalizeRule(Rule{
		ID:           "r1",
		Condition:    leaf("q", "equals", "v"),
		Weight:       1,
		Dependencies: []string{"r0"},
	})
	assert.Equal(t, "dependencies are a legacy dialect feature", rule.Malformed)
}

func Test_NormalizeRule_SharedOperatorsStayModernWithoutLegacyMarkers(t *testing.T) {
	rule := NormalizeRule(Rule{
		ID:        "r1",
		Condition: leaf("q", "greater_than", 5),
		Weight:    1,
	})
	assert.Equal(t, DialectModern, rule.Dialect)
	assert.Empty(t, rule.Malformed)
}
