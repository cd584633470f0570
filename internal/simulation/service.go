package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/savings"
)

// AnswerWriter persists submitted answers before evaluation.
type AnswerWriter interface {
	SaveAnswers(ctx context.Context, subjectID string, answers []eligibility.Answer) error
}

// ResultReader serves the latest persisted evaluation for a subject.
type ResultReader interface {
	Latest(ctx context.Context, subjectID string) ([]eligibility.ProductEligibility, error)
}

// Submitter hands an answer batch to the evaluation pipeline.
type Submitter interface {
	Submit(ctx context.Context, subjectID string, answers []eligibility.Answer) (*eligibility.Ticket, error)
}

// Service drives simulation sessions: session lifecycle, answer intake, and
// result presentation with savings estimates.
type Service struct {
	sessions  SessionStore
	answers   eligibility.AnswerStore
	writer    AnswerWriter
	submitter Submitter
	results   ResultReader
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(sessions SessionStore, answers eligibility.AnswerStore, writer AnswerWriter, submitter Submitter, results ResultReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:  sessions,
		answers:   answers,
		writer:    writer,
		submitter: submitter,
		results:   results,
		logger:    logger,
		now:       time.Now,
	}
}

// Start opens a new session. The generated session id is the subject id for
// everything that follows.
func (s *Service) Start(ctx context.Context) (Session, error) {
	now := s.now().UTC()
	session := Session{
		ID:        uuid.NewString(),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info("simulation session started", "session_id", session.ID)
	return session, nil
}

// SubmitAnswers records a batch of answers and runs one evaluation turn. The
// returned outcome reflects exactly this submission's turn.
func (s *Service) SubmitAnswers(ctx context.Context, sessionID string, answers []eligibility.Answer) (Outcome, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	now := s.now().UTC()
	for i := range answers {
		if answers[i].ObservedAt.IsZero() {
			answers[i].ObservedAt = now
		}
	}
	if err := s.writer.SaveAnswers(ctx, session.ID, answers); err != nil {
		return Outcome{}, fmt.Errorf("save answers for session %s: %w", sessionID, err)
	}

	ticket, err := s.submitter.Submit(ctx, session.ID, answers)
	if err != nil {
		return Outcome{}, err
	}
	results, err := ticket.Wait(ctx)
	if err != nil {
		return Outcome{}, err
	}

	stored, err := s.answers.Load(ctx, session.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load answers for session %s: %w", sessionID, err)
	}
	return s.buildOutcome(session.ID, results, stored, ticket.Changes(), now), nil
}

// Results returns the latest persisted evaluation for a session.
func (s *Service) Results(ctx context.Context, sessionID string) (Outcome, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	var (
		results []eligibility.ProductEligibility
		stored  eligibility.AnswerSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if results, err = s.results.Latest(gctx, session.ID); err != nil {
			return fmt.Errorf("load results for session %s: %w", sessionID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stored, err = s.answers.Load(gctx, session.ID); err != nil {
			return fmt.Errorf("load answers for session %s: %w", sessionID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	return s.buildOutcome(session.ID, results, stored, nil, s.now().UTC()), nil
}

// Complete marks a session finished. Further submissions are still accepted;
// the status is informational for the client.
func (s *Service) Complete(ctx context.Context, sessionID string) error {
	if err := s.sessions.SetStatus(ctx, sessionID, StatusCompleted); err != nil {
		return fmt.Errorf("complete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *Service) buildOutcome(sessionID string, results []eligibility.ProductEligibility, answers eligibility.AnswerSet, changes []eligibility.Change, at time.Time) Outcome {
	estimates := make(map[string]savings.Estimate)
	for _, est := range savings.EstimateAll(answers) {
		estimates[est.ProductID] = est
	}

	products := make([]ProductResult, 0, len(results))
	for _, result := range results {
		product := ProductResult{
			ProductEligibility: result,
			Priority:           PriorityFor(result.Score),
		}
		if est, ok := estimates[result.ProductID]; ok {
			product.Estimate = &est
		}
		products = append(products, product)
	}
	return Outcome{
		SessionID:   sessionID,
		Products:    products,
		Changes:     changes,
		EvaluatedAt: at,
	}
}
