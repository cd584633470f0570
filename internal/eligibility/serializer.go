package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility/metrics"
	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/sentinel"
)

// DefaultQueueLimit bounds how many submissions a single subject can have
// pending before new ones are rejected.
const DefaultQueueLimit = 64

// Ticket is the handle for one accepted submission. The caller waits on it
// for the outcome of its own turn.
type Ticket struct {
	done    chan struct{}
	results []ProductEligibility
	changes []Change
	err     error
}

// Wait blocks until the submission's turn completes or the context ends.
func (t *Ticket) Wait(ctx context.Context) ([]ProductEligibility, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return t.results, t.err
	}
}

// Changes returns the score movements produced by this submission's turn.
// Valid only after Wait has returned.
func (t *Ticket) Changes() []Change { return t.changes }

func (t *Ticket) complete(results []ProductEligibility, changes []Change, err error) {
	t.results = results
	t.changes = changes
	t.err = err
	close(t.done)
}

type submission struct {
	answers []Answer
	ticket  *Ticket
}

// subjectState is only written by the single drain goroutine that holds the
// running flag; the serializer mutex protects the queue and the flag itself.
type subjectState struct {
	queue   []submission
	running bool

	seeded  bool
	answers AnswerSet
	last    []ProductEligibility
	hasLast bool
}

// Serializer orders submissions per subject. Turns for one subject run
// strictly FIFO against the subject's accumulated answer set, so no
// submission's answers are lost to a concurrent write. Different subjects
// proceed independently.
type Serializer struct {
	engine  *Engine
	store   AnswerStore
	results ResultSink
	changes ChangeSink

	logger     *slog.Logger
	metrics    *metrics.Metrics
	queueLimit int
	now        func() time.Time

	mu       sync.Mutex
	subjects map[string]*subjectState
}

// SerializerOption configures optional serializer collaborators.
type SerializerOption func(*Serializer)

func WithSerializerLogger(l *slog.Logger) SerializerOption {
	return func(s *Serializer) { s.logger = l }
}

func WithSerializerMetrics(m *metrics.Metrics) SerializerOption {
	return func(s *Serializer) { s.metrics = m }
}

// WithQueueLimit overrides the per-subject pending submission bound.
func WithQueueLimit(n int) SerializerOption {
	return func(s *Serializer) { s.queueLimit = n }
}

func WithClock(now func() time.Time) SerializerOption {
	return func(s *Serializer) { s.now = now }
}

func NewSerializer(engine *Engine, store AnswerStore, results ResultSink, changes ChangeSink, opts ...SerializerOption) *Serializer {
	s := &Serializer{
		engine:     engine,
		store:      store,
		results:    results,
		changes:    changes,
		logger:     slog.Default(),
		queueLimit: DefaultQueueLimit,
		now:        time.Now,
		subjects:   make(map[string]*subjectState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit enqueues a batch of answers for the subject and returns a ticket for
// the resulting turn. It never blocks on evaluation; a full subject queue is
// rejected with sentinel.ErrQueueFull.
func (s *Serializer) Submit(_ context.Context, subjectID string, answers []Answer) (*Ticket, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("submit: empty subject id")
	}

	s.mu.Lock()
	st, ok := s.subjects[subjectID]
	if !ok {
		st = &subjectState{}
		s.subjects[subjectID] = st
	}
	if s.queueLimit > 0 && len(st.queue) >= s.queueLimit {
		s.mu.Unlock()
		s.metrics.IncQueueRejection()
		return nil, fmt.Errorf("subject %s has %d pending submissions: %w", subjectID, s.queueLimit, sentinel.ErrQueueFull)
	}
	ticket := &Ticket{done: make(chan struct{})}
	st.queue = append(st.queue, submission{answers: answers, ticket: ticket})
	startDrain := !st.running
	if startDrain {
		st.running = true
	}
	s.mu.Unlock()

	s.metrics.QueueDelta(1)
	if startDrain {
		go s.drain(subjectID, st)
	}
	return ticket, nil
}

func (s *Serializer) drain(subjectID string, st *subjectState) {
	for {
		s.mu.Lock()
		if len(st.queue) == 0 {
			st.running = false
			s.mu.Unlock()
			return
		}
		sub := st.queue[0]
		st.queue = st.queue[1:]
		s.mu.Unlock()

		s.metrics.QueueDelta(-1)
		s.runTurn(subjectID, st, sub)
	}
}

// runTurn executes one submission against the subject's state. The drain
// goroutine is the only writer of the seeded/answers/last fields, so no lock
// is held across the turn.
func (s *Serializer) runTurn(subjectID string, st *subjectState, sub submission) {
	ctx := context.Background()

	if !st.seeded {
		stored, err := s.store.Load(ctx, subjectID)
		if err != nil {
			sub.ticket.complete(nil, nil, fmt.Errorf("seed answers for subject %s: %w", subjectID, err))
			return
		}
		st.answers = stored.Clone()
		if st.answers == nil {
			st.answers = make(AnswerSet)
		}
		st.seeded = true
	}

	st.answers.Merge(sub.answers)
	snapshot := st.answers.Clone()

	results, err := s.engine.EvaluateAll(ctx, subjectID, snapshot)
	if err != nil {
		sub.ticket.complete(nil, nil, err)
		return
	}

	var prev []ProductEligibility
	if st.hasLast {
		prev = st.last
	}
	changes := Diff(prev, results, subjectID, s.now().UTC())

	if s.results != nil {
		if err := s.results.Persist(ctx, subjectID, results); err != nil {
			// Previous results stay in place so the next turn re-derives the
			// same changes and retries the write.
			sub.ticket.complete(nil, nil, fmt.Errorf("persist results for subject %s: %w", subjectID, err))
			return
		}
	}
	if s.changes != nil && len(changes) > 0 {
		if err := s.changes.Publish(ctx, changes); err != nil {
			s.logger.Error("publishing score changes failed",
				"subject_id", subjectID,
				"changes", len(changes),
				"error", err,
			)
		} else {
			s.metrics.AddChanges(len(changes))
		}
	}

	st.last = results
	st.hasLast = true
	sub.ticket.complete(results, changes, nil)
}
