package eligibility

import "time"

// Diff compares two evaluation cycles for a subject and returns one Change
// per product whose score moved. A product absent from the previous cycle is
// treated as having had score zero. Diff is pure; identical cycles produce no
// changes.
func Diff(prev, next []ProductEligibility, subjectID string, at time.Time) []Change {
	prevScores := make(map[string]float64, len(prev))
	for _, p := range prev {
		prevScores[p.ProductID] = p.Score
	}

	var changes []Change
	for _, n := range next {
		before := prevScores[n.ProductID]
		if before == n.Score {
			continue
		}
		changes = append(changes, Change{
			SubjectID:     subjectID,
			ProductID:     n.ProductID,
			PreviousScore: before,
			NewScore:      n.Score,
			ObservedAt:    at,
		})
	}
	return changes
}
