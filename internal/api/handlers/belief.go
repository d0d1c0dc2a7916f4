package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

type BeliefHandler struct {
	svc *service.BeliefService
}

func NewBeliefHandler(svc *service.BeliefService) *BeliefHandler {
	return &BeliefHandler{svc: svc}
}

type createBeliefRequest struct {
	Topic      string   `json:"topic"`
	Confidence *float64 `json:"confidence"`
	Icon       string   `json:"icon"`
}

func (h *BeliefHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createBeliefRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Confidence == nil {
		writeError(w, http.StatusBadRequest, "confidence is required")
		return
	}

	b, err := h.svc.Create(r.Context(), owner, req.Topic, *req.Confidence, req.Icon)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BeliefHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	beliefs, err := h.svc.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, beliefs)
}

func (h *BeliefHandler) History(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	changes, err := h.svc.History(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

func (h *BeliefHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.BeliefStats(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type ensureBeliefResponse struct {
	Belief  *domain.Belief `json:"belief"`
	Created bool           `json:"created"`
}

func (h *BeliefHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createBeliefRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	confidence := 0.5
	if req.Confidence != nil {
		confidence = *req.Confidence
	}

	b, created, err := h.svc.EnsureForTopic(r.Context(), owner, req.Topic, confidence)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, ensureBeliefResponse{Belief: b, Created: created})
}

type updateConfidenceRequest struct {
	Confidence *float64   `json:"confidence"`
	DebateID   *uuid.UUID `json:"debate_id"`
}

func (h *BeliefHandler) UpdateConfidence(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "belief")
	if !ok {
		return
	}
	var req updateConfidenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Confidence == nil {
		writeError(w, http.StatusBadRequest, "confidence is required")
		return
	}

	b, err := h.svc.UpdateBelief(r.Context(), owner, id, *req.Confidence, req.DebateID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
