package eligibility

import (
	"fmt"

	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/sentinel"
)

// maxTreeDepth bounds recursion over combined conditions. The data model puts
// no limit on nesting, so a pathological tree must produce a structural error
// instead of exhausting the stack.
const maxTreeDepth = 64

// EvaluateTree evaluates a condition tree against an answer set. It is a pure
// function over its inputs. A malformed tree (unknown combinator, empty
// children, excessive depth, incomplete leaf) returns a structural error
// wrapping sentinel.ErrMalformedRule; it never silently evaluates to false.
func EvaluateTree(c Condition, dialect Dialect, answers AnswerSet) (bool, error) {
	return evaluateNode(c, dialect, answers, 0)
}

func evaluateNode(c Condition, dialect Dialect, answers AnswerSet, depth int) (bool, error) {
	if depth > maxTreeDepth {
		return false, fmt.Errorf("condition nesting exceeds %d levels: %w", maxTreeDepth, sentinel.ErrMalformedRule)
	}
	if c.Leaf() {
		if c.QuestionID == "" || c.Operator == "" {
			return false, fmt.Errorf("leaf condition missing question id or operator: %w", sentinel.ErrMalformedRule)
		}
		if !isCanonical(c.Operator) {
			return false, fmt.Errorf("unknown operator %q: %w", c.Operator, sentinel.ErrMalformedRule)
		}
		return evaluateLeaf(c, dialect, answers), nil
	}
	if len(c.Children) == 0 {
		return false, fmt.Errorf("combined condition %q has no children: %w", c.Combinator, sentinel.ErrMalformedRule)
	}
	switch c.Combinator {
	case CombineAnd:
		for _, child := range c.Children {
			ok, err := evaluateNode(child, dialect, answers, depth+1)
			if err != nil {
				return false, err
			}
			// Short-circuit is safe: leaf evaluation is side-effect free.
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case CombineOr:
		for _, child := range c.Children {
			ok, err := evaluateNode(child, dialect, answers, depth+1)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown combinator %q: %w", c.Combinator, sentinel.ErrMalformedRule)
	}
}
