package sentinel

import "errors"

// Sentinel errors for infrastructure and configuration facts. Stores, sinks,
// and the rule loader return these (optionally wrapped) so callers can branch
// with errors.Is without depending on concrete implementations.
//
// These represent factual states, not validation of caller input:
// - ErrNotFound: entity does not exist in a store
// - ErrMalformedRule: rule definition is structurally invalid (unknown
//   operator, empty children, bad weight)
// - ErrQueueFull: bounded submission queue rejected a new submission
// - ErrUnavailable: backing service unreachable
var (
	ErrNotFound      = errors.New("not found")
	ErrMalformedRule = errors.New("malformed rule")
	ErrQueueFull     = errors.New("submission queue full")
	ErrUnavailable   = errors.New("unavailable")
)
