package eligibility

import (
	"math"
	"strconv"
	"strings"
)

// Leaf condition evaluation. Pure and total: no answer for the referenced
// question id means false, for every operator (fail-closed), and no input
// ever panics or errors here. Structural problems are caught earlier, at
// rule load and tree walk.

func evaluateLeaf(c Condition, dialect Dialect, answers AnswerSet) bool {
	answer, ok := answers[c.QuestionID]
	if !ok {
		return false
	}
	switch c.Operator {
	case OpEquals:
		return valuesEqual(answer.Value, c.Expected)
	case OpNotEquals:
		return !valuesEqual(answer.Value, c.Expected)
	case OpIncludes:
		return includes(answer.Value, c.Expected, dialect)
	case OpNotIncludes:
		return !includes(answer.Value, c.Expected, dialect)
	case OpGreaterThan:
		return compareNumeric(answer.Value, c.Expected, func(a, b float64) bool { return a > b })
	case OpGreaterOrEqual:
		return compareNumeric(answer.Value, c.Expected, func(a, b float64) bool { return a >= b })
	case OpLessThan:
		return compareNumeric(answer.Value, c.Expected, func(a, b float64) bool { return a < b })
	case OpLessOrEqual:
		return compareNumeric(answer.Value, c.Expected, func(a, b float64) bool { return a <= b })
	case OpContains:
		return strings.Contains(
			strings.ToLower(asString(answer.Value)),
			strings.ToLower(asString(c.Expected)),
		)
	default:
		// Unknown operators are rejected at load; treat a stray one as unmet.
		return false
	}
}

// valuesEqual compares after coercing both sides to numbers when both are
// numeric, otherwise as strings. List answers compare elementwise.
func valuesEqual(answer, expected any) bool {
	if al, ok := asList(answer); ok {
		el, eok := asList(expected)
		if !eok || len(al) != len(el) {
			return false
		}
		for i := range al {
			if al[i] != el[i] {
				return false
			}
		}
		return true
	}
	if an, aok := asNumber(answer); aok {
		if en, eok := asNumber(expected); eok {
			if math.IsNaN(an) || math.IsNaN(en) {
				return false
			}
			return an == en
		}
	}
	return asString(answer) == asString(expected)
}

// includes preserves both historical behaviors. Array answers always test
// membership of the expected value. Scalar answers diverge by dialect: the
// modern "includes" is a substring test on the answer, the legacy "in" tests
// membership of the answer in the expected list (a JSON array or a
// comma-separated string).
func includes(answer, expected any, dialect Dialect) bool {
	if list, ok := asList(answer); ok {
		want := asString(expected)
		for _, v := range list {
			if v == want {
				return true
			}
		}
		return false
	}
	if dialect == DialectLegacy {
		for _, v := range expectedList(expected) {
			if v == asString(answer) {
				return true
			}
		}
		return false
	}
	return strings.Contains(asString(answer), asString(expected))
}

func expectedList(expected any) []string {
	if list, ok := asList(expected); ok {
		return list
	}
	parts := strings.Split(asString(expected), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// compareNumeric forces numeric coercion on both sides. The comparison is
// total and NaN-safe: anything that does not coerce to a finite comparison
// participant, including NaN, compares false.
func compareNumeric(answer, expected any, cmp func(a, b float64) bool) bool {
	a, aok := asNumber(answer)
	b, bok := asNumber(expected)
	if !aok || !bok || math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return cmp(a, b)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case nil:
		return ""
	default:
		return ""
	}
}

func asList(v any) ([]string, bool) {
	switch l := v.(type) {
	case []string:
		return l, true
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			out[i] = asString(e)
		}
		return out, true
	default:
		return nil, false
	}
}
