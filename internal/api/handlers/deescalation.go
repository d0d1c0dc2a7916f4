package handlers

import (
	"net/http"

	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

type DeEscalationHandler struct {
	svc *service.DeEscalationService
}

func NewDeEscalationHandler(svc *service.DeEscalationService) *DeEscalationHandler {
	return &DeEscalationHandler{svc: svc}
}

type startSessionRequest struct {
	ScenarioType     string   `json:"scenario_type"`
	InitialCalmScore *float64 `json:"initial_calm_score"`
}

func (h *DeEscalationHandler) Start(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.StartSession(r.Context(), owner, req.ScenarioType, req.InitialCalmScore)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *DeEscalationHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	s, err := h.svc.GetSession(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *DeEscalationHandler) Turns(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	turns, err := h.svc.Turns(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

type recordTurnRequest struct {
	Text       string `json:"text"`
	PromptText string `json:"prompt_text"`
}

func (h *DeEscalationHandler) RecordTurn(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	var req recordTurnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RecordTurn(r.Context(), owner, id, req.Text, req.PromptText)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type trollRequest struct {
	Text string `json:"text"`
}

func (h *DeEscalationHandler) Troll(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	var req trollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.svc.TrollReply(r.Context(), owner, id, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *DeEscalationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	s, err := h.svc.CompleteSession(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
