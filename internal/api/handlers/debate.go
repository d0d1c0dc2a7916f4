package handlers

import (
	"net/http"

	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

type DebateHandler struct {
	svc *service.DebateService
}

func NewDebateHandler(svc *service.DebateService) *DebateHandler {
	return &DebateHandler{svc: svc}
}

func (h *DebateHandler) Personas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Personas())
}

type createDebateRequest struct {
	PersonaID string `json:"persona_id"`
	Topic     string `json:"topic"`
}

func (h *DebateHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createDebateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.Create(r.Context(), owner, req.PersonaID, req.Topic)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DebateHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debate")
	if !ok {
		return
	}
	d, err := h.svc.GetByID(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DebateHandler) Messages(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debate")
	if !ok {
		return
	}
	msgs, err := h.svc.Messages(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type replyRequest struct {
	Text string `json:"text"`
}

func (h *DebateHandler) Reply(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debate")
	if !ok {
		return
	}
	var req replyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.svc.Reply(r.Context(), owner, id, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

type steelManRequest struct {
	SentimentScore *float64 `json:"sentiment_score"`
}

func (h *DebateHandler) SteelMan(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debate")
	if !ok {
		return
	}
	var req steelManRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SentimentScore == nil {
		writeError(w, http.StatusBadRequest, "sentiment_score is required")
		return
	}
	d, err := h.svc.AdjustSteelMan(r.Context(), owner, id, *req.SentimentScore)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DebateHandler) End(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debate")
	if !ok {
		return
	}
	d, err := h.svc.End(r.Context(), owner, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type factCheckRequest struct {
	Claim string `json:"claim"`
}

func (h *DebateHandler) FactCheck(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req factCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.FactCheck(r.Context(), req.Claim)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
