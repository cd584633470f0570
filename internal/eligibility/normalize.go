package eligibility

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Rule loading and normalization. Two operator vocabularies exist in authored
// rules; both are mapped to the canonical Operator enum here so the evaluator
// has one code path. Loading is deliberately permissive: a structurally bad
// rule is tagged via Rule.Malformed and excluded from scoring by the engine
// (one bad rule must not mask the rest of the product), while decode failures
// of the payload itself still propagate as errors.

var modernOperators = map[string]Operator{
	"equals":           OpEquals,
	"not_equals":       OpNotEquals,
	"includes":         OpIncludes,
	"not_includes":     OpNotIncludes,
	"greater_than":     OpGreaterThan,
	"greater_or_equal": OpGreaterOrEqual,
	"less_than":        OpLessThan,
	"less_or_equal":    OpLessOrEqual,
}

var legacyOperators = map[string]Operator{
	"=":        OpEquals,
	"in":       OpIncludes,
	">":        OpGreaterThan,
	">=":       OpGreaterOrEqual,
	"<":        OpLessThan,
	"<=":       OpLessOrEqual,
	"contains": OpContains,
}

type ruleJSON struct {
	ID           any             `json:"id"`
	ProductID    string          `json:"productId"`
	RuleType     string          `json:"ruleType"`
	Conditions   json.RawMessage `json:"conditions"`
	Weight       float64         `json:"weight"`
	Priority     int             `json:"priority"`
	Required     bool            `json:"required"`
	Dependencies []any           `json:"dependencies"`
}

type conditionJSON struct {
	QuestionID    any             `json:"questionId"`
	Operator      string          `json:"operator"`
	ExpectedValue any             `json:"expectedValue"`
	Value         any             `json:"value"`
	Children      []conditionJSON `json:"children"`
}

// ParseRules decodes a JSON array of rule definitions and normalizes each
// one. The returned slice is ordered by priority ascending, then rule id, so
// repeated loads of the same payload are byte-identical downstream.
func ParseRules(data []byte) ([]Rule, error) {
	var defs []ruleJSON
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	rules := make([]Rule, 0, len(defs))
	for i, def := range defs {
		rule, err := parseRule(def)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	SortRules(rules)
	return rules, nil
}

// SortRules orders a rule set by priority ascending with rule id as the tie
// breaker.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}

func parseRule(def ruleJSON) (Rule, error) {
	var cond conditionJSON
	if len(def.Conditions) > 0 {
		if err := json.Unmarshal(def.Conditions, &cond); err != nil {
			return Rule{}, fmt.Errorf("unmarshal conditions: %w", err)
		}
	}
	rule := Rule{
		ID:        asString(def.ID),
		ProductID: def.ProductID,
		Type:      RuleType(def.RuleType),
		Weight:    def.Weight,
		Priority:  def.Priority,
		Required:  def.Required,
		Condition: buildCondition(cond),
	}
	for _, dep := range def.Dependencies {
		if s := asString(dep); s != "" {
			rule.Dependencies = append(rule.Dependencies, s)
		}
	}
	return NormalizeRule(rule), nil
}

// NewRule builds and normalizes a rule from already-decoded parts. Intended
// for stores that read rule rows rather than JSON documents.
func NewRule(rule Rule, rawConditions []byte) (Rule, error) {
	if len(rawConditions) > 0 {
		var cond conditionJSON
		if err := json.Unmarshal(rawConditions, &cond); err != nil {
			return Rule{}, fmt.Errorf("unmarshal conditions for rule %s: %w", rule.ID, err)
		}
		rule.Condition = buildCondition(cond)
	}
	return NormalizeRule(rule), nil
}

func buildCondition(c conditionJSON) Condition {
	op := strings.TrimSpace(c.Operator)
	if upper := strings.ToUpper(op); upper == string(CombineAnd) || upper == string(CombineOr) || len(c.Children) > 0 {
		out := Condition{Combinator: Combinator(strings.ToUpper(op))}
		if out.Combinator == "" {
			out.Combinator = CombineAnd
		}
		out.Children = make([]Condition, 0, len(c.Children))
		for _, child := range c.Children {
			out.Children = append(out.Children, buildCondition(child))
		}
		return out
	}
	expected := c.ExpectedValue
	if expected == nil {
		expected = c.Value
	}
	return Condition{
		QuestionID: asString(c.QuestionID),
		Operator:   Operator(op),
		Expected:   expected,
	}
}

// NormalizeRule maps raw operators onto the canonical enum, detects the
// dialect, and tags structural problems on Rule.Malformed. It never errors:
// the engine logs and excludes tagged rules so one bad definition cannot
// poison a whole product.
func NormalizeRule(rule Rule) Rule {
	var modern, legacy, unknown int
	rule.Condition = mapOperators(rule.Condition, &modern, &legacy, &unknown)

	switch {
	case rule.Weight < 0:
		rule.Malformed = fmt.Sprintf("negative weight %v", rule.Weight)
	case unknown > 0:
		rule.Malformed = "unknown operator"
	case modern > 0 && legacy > 0:
		rule.Malformed = "mixed operator dialects"
	}

	if legacy > 0 {
		rule.Dialect = DialectLegacy
	} else {
		rule.Dialect = DialectModern
	}
	if len(rule.Dependencies) > 0 && rule.Dialect != DialectLegacy && rule.Malformed == "" {
		rule.Malformed = "dependencies are a legacy dialect feature"
	}
	if rule.Type == "" {
		if rule.Condition.Leaf() {
			rule.Type = RuleSimple
		} else {
			rule.Type = RuleCombined
		}
	}
	return rule
}

func mapOperators(c Condition, modern, legacy, unknown *int) Condition {
	if !c.Leaf() {
		for i := range c.Children {
			c.Children[i] = mapOperators(c.Children[i], modern, legacy, unknown)
		}
		return c
	}
	raw := string(c.Operator)
	if op, ok := legacyOperators[raw]; ok {
		*legacy++
		c.Operator = op
		return c
	}
	if op, ok := modernOperators[raw]; ok {
		*modern++
		c.Operator = op
		return c
	}
	*unknown++
	return c
}

// isCanonical reports whether op belongs to the canonical operator set the
// evaluator understands.
func isCanonical(op Operator) bool {
	switch op {
	case OpEquals, OpNotEquals, OpIncludes, OpNotIncludes,
		OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual, OpContains:
		return true
	}
	return false
}
