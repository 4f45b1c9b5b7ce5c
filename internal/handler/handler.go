package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anupamd/papergen/internal/generate"
	"github.com/anupamd/papergen/internal/model"
	"github.com/anupamd/papergen/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store *store.Store
	orch  *generate.Orchestrator
}

// New creates a new Handler.
func New(s *store.Store, orch *generate.Orchestrator) *Handler {
	return &Handler{store: s, orch: orch}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/generate", h.handleGenerate)
	r.Get("/api/papers", h.handleListPapers)
	r.Get("/api/papers/{paperID}", h.handleGetPaper)
	r.Delete("/api/papers/{paperID}", h.handleDeletePaper)
	r.Post("/api/papers/{paperID}/sessions", h.handleCreateSession)
	r.Get("/api/sessions/{sessionID}", h.handleGetSession)
	r.Put("/api/sessions/{sessionID}/responses", h.handleSaveResponses)
	r.Post("/api/sessions/{sessionID}/submit", h.handleSubmitSession)
}

// streamSink writes progress events as newline-delimited JSON, flushing
// after each event so the client sees progress as it happens. The
// orchestrator serializes Emit calls.
type streamSink struct {
	enc     *json.Encoder
	flusher http.Flusher
}

func newStreamSink(w http.ResponseWriter) *streamSink {
	flusher, _ := w.(http.Flusher)
	return &streamSink{enc: json.NewEncoder(w), flusher: flusher}
}

func (s *streamSink) Emit(ev model.ProgressEvent) error {
	if err := s.enc.Encode(ev); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// handleGenerate runs a full paper generation, streaming progress events.
// The stream itself is the error channel: a malformed body or a failed save
// terminates it with an error event rather than an HTTP error status.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	sink := newStreamSink(w)

	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := sink.Emit(model.ProgressEvent{Error: "invalid request body: " + err.Error()}); err != nil {
			slog.Warn("emit error event failed", "error", err)
		}
		return
	}

	// Run emits the terminal event itself; its error is already on the
	// stream and logged.
	_ = h.orch.Run(r.Context(), req, sink)
}

func (h *Handler) handleListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := h.store.ListPapers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if papers == nil {
		papers = []model.QuestionPaper{}
	}
	respondJSON(w, http.StatusOK, papers)
}

func (h *Handler) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	paper, questions, err := h.store.GetPaper(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"paper":     paper,
		"questions": questions,
	})
}

func (h *Handler) handleDeletePaper(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePaper(r.Context(), chi.URLParam(r, "paperID")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	// The paper must exist before a sitting can start.
	if _, _, err := h.store.GetPaper(r.Context(), paperID); err != nil {
		respondStoreError(w, err)
		return
	}

	sess, err := h.store.CreateSession(r.Context(), paperID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	paper, _, err := h.store.GetPaper(r.Context(), sess.PaperID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"paper":   paper,
	})
}

func (h *Handler) handleSaveResponses(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Responses map[string]string `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Responses == nil {
		body.Responses = map[string]string{}
	}

	if err := h.store.SaveResponses(r.Context(), chi.URLParam(r, "sessionID"), body.Responses); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitSession finalizes a session: it records the submitted answers,
// scores them against the paper's answer key, and marks the session
// completed.
func (h *Handler) handleSubmitSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body struct {
		Responses map[string]string `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.store.GetSession(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if sess.Status != model.StatusInProgress {
		http.Error(w, "session already completed", http.StatusBadRequest)
		return
	}

	responses := body.Responses
	if responses == nil {
		responses = sess.Responses
	}

	_, questions, err := h.store.GetPaper(r.Context(), sess.PaperID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	score := scoreResponses(questions, responses)
	if err := h.store.CompleteSession(r.Context(), sessionID, responses, score); err != nil {
		respondStoreError(w, err)
		return
	}

	sess, err = h.store.GetSession(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// scoreResponses sums the marks of correctly answered questions. Responses
// are keyed by question ID.
func scoreResponses(questions []model.Question, responses map[string]string) float64 {
	var score float64
	for _, q := range questions {
		if responses[strconv.FormatInt(q.ID, 10)] == q.CorrectAnswer {
			score += float64(q.Marks)
		}
	}
	return score
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
