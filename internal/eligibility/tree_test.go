package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/sentinel"
)

func Test_EvaluateTree_SingleLeaf(t *testing.T) {
	answers := answersWith(map[string]any{"owns_vehicles": "Oui"})

	ok, err := EvaluateTree(leaf("owns_vehicles", OpEquals, "Oui"), DialectModern, answers)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvaluateTree(leaf("owns_vehicles", OpEquals, "Non"), DialectModern, answers)
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_EvaluateTree_AndRequiresEveryChild(t *testing.T) {
	answers := answersWith(map[string]any{
		"sector": "Secteur Agricole",
		"litres": float64(500),
	})
	tree := Condition{
		Combinator: CombineAnd,
		Children: []Condition{
			leaf("sector", OpEquals, "Secteur Agricole"),
			leaf("litres", OpGreaterThan, 100),
		},
	}

	ok, err := EvaluateTree(tree, DialectModern, answers)
	require.NoError(t, err)
	assert.True(t, ok)

	tree.Children[1] = leaf("litres", OpGreaterThan, 1000)
	ok, err = EvaluateTree(tree, DialectModern, answers)
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_EvaluateTree_OrRequiresAnyChild(t *testing.T) {
	answers := answersWith(map[string]any{"sector": "Taxi / VTC"})
	tree := Condition{
		Combinator: CombineOr,
		Children: []Condition{
			leaf("sector", OpEquals, "Secteur Agricole"),
			leaf("sector", OpEquals, "Taxi / VTC"),
		},
	}

	ok, err := EvaluateTree(tree, DialectModern, answers)
	require.NoError(t, err)
	assert.True(t, ok)

	tree.Children[1] = leaf("sector", OpEquals, "BTP / Travaux publics")
	ok, err = EvaluateTree(tree, DialectModern, answers)
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_EvaluateTree_NestedCombination(t *testing.T) {
	answers := answersWith(map[string]any{
		"sector":   "Transport routier de marchandises",
		"vehicles": []any{"Camions de plus de 7,5 tonnes"},
		"drivers":  float64(8),
	})
	tree := Condition{
		Combinator: CombineAnd,
		Children: []Condition{
			leaf("sector", OpIncludes, "routier"),
			{
				Combinator: CombineOr,
				Children: []Condition{
					leaf("vehicles", OpIncludes, "Camions de plus de 7,5 tonnes"),
					leaf("drivers", OpGreaterThan, 20),
				},
			},
		},
	}

	ok, err := EvaluateTree(tree, DialectModern, answers)
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_EvaluateTree_EmptyChildrenIsStructuralError(t *testing.T) {
	for _, combinator := range []Combinator{CombineAnd, CombineOr} {
		_, err := EvaluateTree(Condition{Combinator: combinator}, DialectModern, AnswerSet{})
		require.ErrorIs(t, err, sentinel.ErrMalformedRule, "combinator %s", combinator)
	}
}

func Test_EvaluateTree_UnknownCombinatorIsStructuralError(t *testing.T) {
	tree := Condition{
		Combinator: "XOR",
		Children:   []Condition{leaf("q", OpEquals, "v")},
	}
	_, err := EvaluateTree(tree, DialectModern, AnswerSet{})
	require.ErrorIs(t, err, sentinel.ErrMalformedRule)
}

func Test_EvaluateTree_IncompleteLeafIsStructuralError(t *testing.T) {
	_, err := EvaluateTree(Condition{QuestionID: "q"}, DialectModern, AnswerSet{})
	require.ErrorIs(t, err, sentinel.ErrMalformedRule)

	_, err = EvaluateTree(Condition{Operator: OpEquals}, DialectModern, AnswerSet{})
	require.ErrorIs(t, err, sentinel.ErrMalformedRule)
}

func Test_EvaluateTree_UnknownOperatorIsStructuralError(t *testing.T) {
	_, err := EvaluateTree(leaf("q", "regex_match", "v"), DialectModern, AnswerSet{})
	require.ErrorIs(t, err, sentinel.ErrMalformedRule)
}

func Test_EvaluateTree_ExcessiveDepthIsStructuralError(t *testing.T) {
	tree := leaf("q", OpEquals, "v")
	for i := 0; i < maxTreeDepth+2; i++ {
		tree = Condition{Combinator: CombineAnd, Children: []Condition{tree}}
	}
	_, err := EvaluateTree(tree, DialectModern, AnswerSet{})
	require.ErrorIs(t, err, sentinel.ErrMalformedRule)
}

func Test_EvaluateTree_ErrorInChildPropagates(t *testing.T) {
	answers := answersWith(map[string]any{"q": "v"})
	tree := Condition{
		Combinator: CombineOr,
		Children: []Condition{
			leaf("q", OpEquals, "v"),
			{Combinator: CombineAnd},
		},
	}
	// The bad child sits after a satisfied one; OR short-circuits before
	// reaching it.
	ok, err := EvaluateTree(tree, DialectModern, answers)
	require.NoError(t, err)
	assert.True(t, ok)

	tree.Children[0], tree.Children[1] = tree.Children[1], tree.Children[0]
	_, err = EvaluateTree(tree, DialectModern, answers)
	require.ErrorIs(t, err, sentinel.ErrMalformedRule)
}
