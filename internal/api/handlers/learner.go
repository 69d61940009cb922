package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/openclaip/claip/internal/checkpoint"
	"github.com/openclaip/claip/internal/domain"
	"github.com/openclaip/claip/internal/learner"
)

// LearnerHandler is the HTTP surface over one learner instance. The
// learner itself has no internal synchronization, so every call goes
// through one exclusive lock here.
type LearnerHandler struct {
	mu          sync.Mutex
	learner     *learner.Learner
	checkpoints *checkpoint.Manager
}

func NewLearnerHandler(l *learner.Learner, cm *checkpoint.Manager) *LearnerHandler {
	return &LearnerHandler{learner: l, checkpoints: cm}
}

type ingestRequest struct {
	Subject string         `json:"subject"`
	Info    domain.Payload `json:"info,omitempty"`
	Label   *float64       `json:"label,omitempty"`
	Sources []string       `json:"sources"`
	Own     bool           `json:"own,omitempty"`
}

func (h *LearnerHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}
	if len(req.Sources) == 0 {
		writeError(w, http.StatusBadRequest, "at least one source is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.learner.Ingest(r.Context(), req.Subject, req.Info, req.Label, req.Sources, req.Own); err != nil {
		h.writeLearnerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.learner.SubjectReport(req.Subject))
}

func (h *LearnerHandler) SubjectReport(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	if subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.learner.SubjectReport(subject))
}

type predictRequest struct {
	Subject      string         `json:"subject"`
	Scenario     domain.Payload `json:"scenario,omitempty"`
	EvidenceHint *float64       `json:"evidence_hint,omitempty"`
	Own          bool           `json:"own,omitempty"`
}

type predictResponse struct {
	Index int     `json:"index"`
	Prob  float64 `json:"prob"`
}

func (h *LearnerHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	idx, err := h.learner.Predict(r.Context(), req.Subject, req.Scenario, req.EvidenceHint, req.Own)
	if err != nil {
		h.writeLearnerError(w, err)
		return
	}
	rec, err := h.learner.Prediction(idx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}
	writeJSON(w, http.StatusCreated, predictResponse{Index: idx, Prob: rec.Prob})
}

type imagineRequest struct {
	Subject      string   `json:"subject"`
	EvidenceHint *float64 `json:"evidence_hint,omitempty"`
}

type imagineResponse struct {
	Permitted bool     `json:"permitted"`
	Index     *int     `json:"index,omitempty"`
	Prob      *float64 `json:"prob,omitempty"`
}

func (h *LearnerHandler) Imagine(w http.ResponseWriter, r *http.Request) {
	var req imagineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	idx, ok, err := h.learner.ImagineAndPredict(r.Context(), req.Subject, req.EvidenceHint)
	if err != nil {
		h.writeLearnerError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, imagineResponse{Permitted: false})
		return
	}
	rec, err := h.learner.Prediction(idx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}
	writeJSON(w, http.StatusCreated, imagineResponse{Permitted: true, Index: &idx, Prob: &rec.Prob})
}

type resolveRequest struct {
	Observed int `json:"observed"`
}

func (h *LearnerHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction index")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Observed != 0 && req.Observed != 1 {
		writeError(w, http.StatusBadRequest, "observed must be 0 or 1")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.learner.ResolvePrediction(r.Context(), idx, req.Observed); err != nil {
		h.writeLearnerError(w, err)
		return
	}
	rec, err := h.learner.Prediction(idx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *LearnerHandler) Reflect(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.learner.SelfReflection(r.Context()); err != nil {
		h.writeLearnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.learner.MetricsReport())
}

type createCheckpointRequest struct {
	Label string `json:"label,omitempty"`
}

func (h *LearnerHandler) CreateCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req createCheckpointRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	meta, err := h.learner.Checkpoint(r.Context(), req.Label)
	if err != nil {
		h.writeLearnerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (h *LearnerHandler) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	if h.checkpoints == nil {
		writeError(w, http.StatusNotFound, "checkpointing is not configured")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	metas, err := h.checkpoints.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list checkpoints")
		return
	}
	writeJSON(w, http.StatusOK, metas)
}

type restoreRequest struct {
	Path string `json:"path"`
}

func (h *LearnerHandler) RestoreCheckpoint(w http.ResponseWriter, r *http.Request) {
	if h.checkpoints == nil {
		writeError(w, http.StatusNotFound, "checkpointing is not configured")
		return
	}
	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	state, err := h.checkpoints.Restore(req.Path)
	if err != nil {
		switch {
		case errors.Is(err, checkpoint.ErrMetadataMissing):
			writeError(w, http.StatusConflict, "checkpoint metadata not found")
		case errors.Is(err, checkpoint.ErrHashMismatch):
			writeError(w, http.StatusConflict, "checkpoint failed integrity check")
		default:
			writeError(w, http.StatusInternalServerError, "failed to restore checkpoint")
		}
		return
	}
	if err := h.learner.RestoreState(state); err != nil {
		if errors.Is(err, learner.ErrStateVersionMismatch) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to restore state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"restored":    true,
		"event_count": h.learner.EventCount(),
	})
}

func (h *LearnerHandler) writeLearnerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, learner.ErrExternalPredictionGated),
		errors.Is(err, learner.ErrInternalPredictionGated):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, learner.ErrPredictionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, learner.ErrCheckpointingDisabled):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, learner.ErrMoralCoreMisconfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
}
