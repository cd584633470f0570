package eligibility

import "context"

// The core consumes a handful of narrow ports implemented outside this
// package.
// Interfaces are defined here, on the consumer side, so stores and sinks can
// be swapped without touching evaluation code.

// RuleSource returns the normalized rule set for a product, ordered by
// priority ascending. Failures must propagate; the engine never converts a
// fetch failure into an ineligible result.
type RuleSource interface {
	Rules(ctx context.Context, productID string) ([]Rule, error)
}

// ProductCatalog lists the products currently open for evaluation.
type ProductCatalog interface {
	ListActiveProductIDs(ctx context.Context) ([]string, error)
}

// AnswerStore loads a subject's recorded answers. The serializer uses it to
// seed the in-memory accumulated set when a subject is cold (process
// restart).
type AnswerStore interface {
	Load(ctx context.Context, subjectID string) (AnswerSet, error)
}

// ResultSink persists the full recomputed eligibility set for a subject.
type ResultSink interface {
	Persist(ctx context.Context, subjectID string, results []ProductEligibility) error
}

// ChangeSink forwards score movements to downstream consumers.
type ChangeSink interface {
	Publish(ctx context.Context, changes []Change) error
}
