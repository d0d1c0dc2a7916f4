package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

type BiasHandler struct {
	svc *service.BiasService
}

func NewBiasHandler(svc *service.BiasService) *BiasHandler {
	return &BiasHandler{svc: svc}
}

type recordBiasRequest struct {
	BiasType    string     `json:"bias_type"`
	BiasName    string     `json:"bias_name"`
	Severity    *float64   `json:"severity"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
	ExampleText string     `json:"example_text"`
	DebateID    *uuid.UUID `json:"debate_id"`
}

func (h *BiasHandler) Record(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req recordBiasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Severity == nil {
		writeError(w, http.StatusBadRequest, "severity is required")
		return
	}

	b := &domain.CognitiveBias{
		BiasType:    req.BiasType,
		BiasName:    req.BiasName,
		Severity:    *req.Severity,
		Color:       req.Color,
		Description: req.Description,
		ExampleText: req.ExampleText,
		DebateID:    req.DebateID,
	}
	if err := h.svc.Record(r.Context(), owner, b); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BiasHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	biases, err := h.svc.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, biases)
}

func (h *BiasHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.BiasStats(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
