package handlers

import (
	"net/http"
	"time"

	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

type PredictionHandler struct {
	svc *service.PredictionService
}

func NewPredictionHandler(svc *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{svc: svc}
}

type createPredictionRequest struct {
	Question    string    `json:"question"`
	Category    string    `json:"category"`
	Probability *float64  `json:"probability"`
	Deadline    time.Time `json:"deadline"`
}

func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createPredictionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Probability == nil {
		writeError(w, http.StatusBadRequest, "probability is required")
		return
	}

	p, err := h.svc.Create(r.Context(), owner, req.Question, req.Category, *req.Probability, req.Deadline)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	predictions, err := h.svc.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

func (h *PredictionHandler) Open(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	predictions, err := h.svc.ListOpen(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

func (h *PredictionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type updateProbabilityRequest struct {
	Probability *float64 `json:"probability"`
}

func (h *PredictionHandler) UpdateProbability(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "prediction")
	if !ok {
		return
	}
	var req updateProbabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Probability == nil {
		writeError(w, http.StatusBadRequest, "probability is required")
		return
	}
	if err := h.svc.UpdateProbability(r.Context(), owner, id, *req.Probability); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resolveRequest struct {
	Outcome *bool `json:"outcome"`
}

func (h *PredictionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "prediction")
	if !ok {
		return
	}
	var req resolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Outcome == nil {
		writeError(w, http.StatusBadRequest, "outcome is required")
		return
	}

	p, err := h.svc.ResolvePrediction(r.Context(), owner, id, *req.Outcome)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
