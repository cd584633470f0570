package eligibility

import (
	"time"
)

// Dialect identifies which historical rule vocabulary a rule was authored in.
// Both dialects are normalized to the canonical Operator set at load time, but
// a few behaviors (scalar membership, dependency gating) remain
// dialect-specific, so the origin is kept on the rule.
type Dialect string

const (
	DialectModern Dialect = "modern"
	DialectLegacy Dialect = "legacy"
)

// Operator is the canonical condition operator set. Loaders map both the
// modern vocabulary (equals, not_equals, includes, ...) and the legacy one
// (=, in, >, >=, <, <=, contains) onto it so the evaluator has a single code
// path.
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not_equals"
	OpIncludes       Operator = "includes"
	OpNotIncludes    Operator = "not_includes"
	OpGreaterThan    Operator = "greater_than"
	OpGreaterOrEqual Operator = "greater_or_equal"
	OpLessThan       Operator = "less_than"
	OpLessOrEqual    Operator = "less_or_equal"
	OpContains       Operator = "contains"
)

// Combinator joins the children of a combined condition.
type Combinator string

const (
	CombineAnd Combinator = "AND"
	CombineOr  Combinator = "OR"
)

// Answer is one recorded questionnaire answer. Values are the decoded JSON
// forms: string, float64, bool, or []string. Answers are immutable once
// recorded; within a subject's answer set the latest write for a question id
// wins.
type Answer struct {
	QuestionID string    `json:"questionId"`
	Value      any       `json:"value"`
	ObservedAt time.Time `json:"observedAt"`
}

// AnswerSet is a subject's accumulated answers keyed by question id.
type AnswerSet map[string]Answer

// Merge applies a batch of answers on top of the set, last write wins per
// question id. The receiver is mutated; zero-value keys are skipped.
func (s AnswerSet) Merge(answers []Answer) {
	for _, a := range answers {
		if a.QuestionID == "" {
			continue
		}
		s[a.QuestionID] = a
	}
}

// Clone returns an independent copy so callers can hand a snapshot to the
// pure evaluation phase.
func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Condition is one node of a rule's condition tree. A node is either a leaf
// (QuestionID/Operator/Expected set, Combinator empty) or a combined node
// (Combinator set, Children non-empty). Nesting depth is unbounded by the
// data model; the evaluator guards it.
type Condition struct {
	QuestionID string     `json:"questionId,omitempty"`
	Operator   Operator   `json:"operator,omitempty"`
	Expected   any        `json:"expectedValue,omitempty"`
	Combinator Combinator `json:"combinator,omitempty"`
	Children   []Condition `json:"children,omitempty"`
}

// Leaf reports whether the node is a leaf condition.
func (c Condition) Leaf() bool { return c.Combinator == "" }

// RuleType distinguishes single-condition rules from combined trees.
type RuleType string

const (
	RuleSimple   RuleType = "simple"
	RuleCombined RuleType = "combined"
)

// Rule is one normalized eligibility rule for a product. Weight contributes
// to the product score; Required gates eligibility regardless of weight.
// Dependencies (legacy dialect only) name prerequisite rule ids within the
// same product rule set.
type Rule struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	Type         RuleType  `json:"ruleType"`
	Condition    Condition `json:"conditions"`
	Weight       float64   `json:"weight"`
	Priority     int       `json:"priority"`
	Required     bool      `json:"required,omitempty"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Dialect      Dialect   `json:"dialect"`

	// Malformed carries the load-time structural problem, if any. Tagged
	// rules are logged and excluded from scoring instead of failing the
	// whole product.
	Malformed string `json:"-"`
}

// RuleDetail records how one rule contributed to a product evaluation.
// Gated rules (unmet legacy dependencies) and invalid rules (structural
// errors) are excluded from both satisfied and total weight.
type RuleDetail struct {
	RuleID    string  `json:"ruleId"`
	Satisfied bool    `json:"satisfied"`
	Weight    float64 `json:"weight"`
	Gated     bool    `json:"gated,omitempty"`
	Invalid   bool    `json:"invalid,omitempty"`
}

// ProductEligibility is the computed outcome for one product. Score is
// satisfiedWeight/totalWeight in [0,1], or 0 when no weight was in play.
type ProductEligibility struct {
	ProductID      string       `json:"productId"`
	Score          float64      `json:"score"`
	SatisfiedCount int          `json:"satisfiedCount"`
	TotalCount     int          `json:"totalCount"`
	IsEligible     bool         `json:"isEligible"`
	Details        []RuleDetail `json:"perRuleDetail"`
}

// Change records a score movement for one (subject, product) pair between
// two evaluation cycles. Changes are computed and forwarded, never persisted
// by this package.
type Change struct {
	SubjectID     string    `json:"subjectId"`
	ProductID     string    `json:"productId"`
	PreviousScore float64   `json:"previousScore"`
	NewScore      float64   `json:"newScore"`
	ObservedAt    time.Time `json:"observedAt"`
}
