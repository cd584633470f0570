package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Diff_IdenticalCyclesEmitNothing(t *testing.T) {
	cycle := []ProductEligibility{
		{ProductID: "TICPE", Score: 0.75},
		{ProductID: "URSSAF", Score: 0.5},
	}
	changes := Diff(cycle, cycle, "s", time.Now())
	assert.Empty(t, changes)
}

func Test_Diff_FirstCycleTreatsPreviousAsZero(t *testing.T) {
	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	next := []ProductEligibility{
		{ProductID: "TICPE", Score: 0.75},
		{ProductID: "URSSAF", Score: 0},
	}
	changes := Diff(nil, next, "subject-1", at)

	// URSSAF stayed at zero, so only TICPE moved.
	require.Len(t, changes, 1)
	assert.Equal(t, Change{
		SubjectID:     "subject-1",
		ProductID:     "TICPE",
		PreviousScore: 0,
		NewScore:      0.75,
		ObservedAt:    at,
	}, changes[0])
}

func Test_Diff_EmitsOnlyMovedProducts(t *testing.T) {
	prev := []ProductEligibility{
		{ProductID: "A", Score: 0.2},
		{ProductID: "B", Score: 0.8},
		{ProductID: "C", Score: 0.5},
	}
	next := []ProductEligibility{
		{ProductID: "A", Score: 0.2},
		{ProductID: "B", Score: 0.6},
		{ProductID: "C", Score: 0.9},
	}
	changes := Diff(prev, next, "s", time.Now())
	require.Len(t, changes, 2)
	assert.Equal(t, "B", changes[0].ProductID)
	assert.Equal(t, 0.8, changes[0].PreviousScore)
	assert.Equal(t, 0.6, changes[0].NewScore)
	assert.Equal(t, "C", changes[1].ProductID)
}

func Test_Diff_ProductNewToCatalog(t *testing.T) {
	prev := []ProductEligibility{{ProductID: "A", Score: 0.5}}
	next := []ProductEligibility{
		{ProductID: "A", Score: 0.5},
		{ProductID: "NEW", Score: 0.4},
	}
	changes := Diff(prev, next, "s", time.Now())
	require.Len(t, changes, 1)
	assert.Equal(t, "NEW", changes[0].ProductID)
	assert.Equal(t, 0.0, changes[0].PreviousScore)
}
