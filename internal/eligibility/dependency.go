package eligibility

// Dependency gating (legacy rule dialect). A rule that declares prerequisite
// rule ids only counts once every prerequisite is itself effectively
// satisfied; otherwise the rule is excluded from the weight totals entirely,
// as if it had not been requested. Gating is transitive through chains, and a
// cycle is a structural configuration error for every rule on it.

type gateOutcome struct {
	// satisfied holds the effective truth value per rule id: the rule's own
	// tree result and all of its prerequisites.
	satisfied map[string]bool
	// gated marks rules excluded because a prerequisite was not satisfied.
	gated map[string]bool
	// invalid maps rule ids to structural problems found during resolution
	// (cycles, references to unknown rules).
	invalid map[string]string
}

const (
	depStateUnvisited = iota
	depStateVisiting
	depStateDone
)

// resolveDependencies performs the gating pre-pass over one product's rule
// set. raw carries the tree-evaluation result per rule id and preInvalid the
// rules already excluded for structural reasons; an invalid prerequisite is
// treated as unsatisfied (fail-closed), which gates its dependents without
// invalidating them.
func resolveDependencies(rules []Rule, raw map[string]bool, preInvalid map[string]string) gateOutcome {
	byID := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}

	out := gateOutcome{
		satisfied: make(map[string]bool, len(rules)),
		gated:     make(map[string]bool),
		invalid:   make(map[string]string),
	}
	state := make(map[string]int, len(rules))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case depStateDone:
			return out.satisfied[id]
		case depStateVisiting:
			out.invalid[id] = "dependency cycle"
			return false
		}
		state[id] = depStateVisiting

		rule, known := byID[id]
		effective := false
		if known && preInvalid[id] == "" {
			depsOK := true
			for _, dep := range rule.Dependencies {
				if _, exists := byID[dep]; !exists {
					out.invalid[id] = "unknown dependency " + dep
					depsOK = false
					continue
				}
				if !visit(dep) {
					depsOK = false
				}
			}
			if _, cyclic := out.invalid[id]; !cyclic {
				if !depsOK {
					out.gated[id] = true
				} else {
					effective = raw[id]
				}
			}
		}

		state[id] = depStateDone
		out.satisfied[id] = effective
		return effective
	}

	for _, r := range rules {
		visit(r.ID)
	}
	return out
}
