package sink

import (
	"context"
	"log/slog"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
)

// LogChangeSink writes score changes to the structured log. It is the default
// sink when no broker is configured.
type LogChangeSink struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *LogChangeSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogChangeSink{logger: logger}
}

func (s *LogChangeSink) Publish(_ context.Context, changes []eligibility.Change) error {
	for _, change := range changes {
		s.logger.Info("eligibility score changed",
			"subject_id", change.SubjectID,
			"product_id", change.ProductID,
			"previous_score", change.PreviousScore,
			"new_score", change.NewScore,
		)
	}
	return nil
}
