package eligibility

// Policy decides product eligibility from the computed score and rule
// counts. Two deployments exist historically: a score threshold and an
// all-rules-must-pass variant. Both live behind this interface so the engine
// is written once.
type Policy interface {
	Eligible(score float64, satisfied, total int) bool
	Name() string
}

// DefaultThreshold is the historical eligibility cut-off.
const DefaultThreshold = 0.6

// ThresholdPolicy grants eligibility when the weighted score reaches the
// configured fraction.
type ThresholdPolicy struct {
	Threshold float64
}

func (p ThresholdPolicy) Eligible(score float64, _, total int) bool {
	return total > 0 && score >= p.Threshold
}

func (p ThresholdPolicy) Name() string { return "threshold" }

// AllRulesPolicy grants eligibility only when every counted rule is
// satisfied. The score is still reported as a fraction for ranking.
type AllRulesPolicy struct{}

func (AllRulesPolicy) Eligible(_ float64, satisfied, total int) bool {
	return total > 0 && satisfied == total
}

func (AllRulesPolicy) Name() string { return "all_rules" }
