package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/simulation"
	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/httputil"
)

// SimulationService defines the simulation operations the transport needs.
type SimulationService interface {
	Start(ctx context.Context) (simulation.Session, error)
	SubmitAnswers(ctx context.Context, sessionID string, answers []eligibility.Answer) (simulation.Outcome, error)
	Results(ctx context.Context, sessionID string) (simulation.Outcome, error)
	Complete(ctx context.Context, sessionID string) error
}

// SimulationHandler wires simulation endpoints to the simulation service.
type SimulationHandler struct {
	service SimulationService
	logger  *slog.Logger
}

func NewSimulationHandler(service SimulationService, logger *slog.Logger) *SimulationHandler {
	return &SimulationHandler{service: service, logger: logger}
}

// Register mounts simulation endpoints on the router.
func (h *SimulationHandler) Register(r chi.Router) {
	r.Post("/simulations", h.handleStart)
	r.Post("/simulations/{sessionID}/answers", h.handleSubmitAnswers)
	r.Get("/simulations/{sessionID}/results", h.handleResults)
	r.Post("/simulations/{sessionID}/complete", h.handleComplete)
}

func (h *SimulationHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Start(r.Context())
	if err != nil {
		h.logger.Error("starting simulation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, session)
}

type submitAnswersRequest struct {
	Answers []answerPayload `json:"answers"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Value      any    `json:"value"`
}

func (h *SimulationHandler) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	start := time.Now()

	var req submitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Answers) == 0 {
		httputil.BadRequest(w, "answers must not be empty")
		return
	}
	answers := make([]eligibility.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		if a.QuestionID == "" {
			httputil.BadRequest(w, "answer missing questionId")
			return
		}
		answers = append(answers, eligibility.Answer{QuestionID: a.QuestionID, Value: a.Value})
	}

	outcome, err := h.service.SubmitAnswers(r.Context(), sessionID, answers)
	if err != nil {
		h.logger.Error("submitting answers failed",
			"session_id", sessionID,
			"answers", len(answers),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.Info("answers evaluated",
		"session_id", sessionID,
		"answers", len(answers),
		"changes", len(outcome.Changes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (h *SimulationHandler) handleResults(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	outcome, err := h.service.Results(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (h *SimulationHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.Complete(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": string(simulation.StatusCompleted)})
}
