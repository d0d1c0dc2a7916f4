package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

const streamKeepAlive = 25 * time.Second

type RingHandler struct {
	svc       *service.GroupDebateService
	keepAlive time.Duration
}

func NewRingHandler(svc *service.GroupDebateService) *RingHandler {
	return &RingHandler{svc: svc, keepAlive: streamKeepAlive}
}

func (h *RingHandler) List(w http.ResponseWriter, r *http.Request) {
	includeAnonymous := r.URL.Query().Get("include_anonymous") == "true"
	rings, err := h.svc.ListActive(r.Context(), includeAnonymous)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rings)
}

func (h *RingHandler) Featured(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Featured(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type createRingRequest struct {
	Topic string `json:"topic"`
	service.RingOptions
}

func (h *RingHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createRingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.Create(r.Context(), owner, req.Topic, req.RingOptions)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *RingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "ring")
	if !ok {
		return
	}
	g, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *RingHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "ring")
	if !ok {
		return
	}
	var req domain.GroupDebateUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.Update(r.Context(), id, actor, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type joinRingRequest struct {
	AnonymousMaskID *string `json:"anonymous_mask_id"`
}

func (h *RingHandler) Join(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "ring")
	if !ok {
		return
	}
	var req joinRingRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Join(r.Context(), id, owner, req.AnonymousMaskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *RingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "ring")
	if !ok {
		return
	}
	if err := h.svc.Leave(r.Context(), id, owner); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RingHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "ring")
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	msgs, err := h.svc.Messages(r.Context(), id, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Content   string     `json:"content"`
	ReplyToID *uuid.UUID `json:"reply_to_id"`
}

func (h *RingHandler) Send(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "ring")
	if !ok {
		return
	}
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.Send(r.Context(), id, owner, req.Content, req.ReplyToID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Stream delivers new ring messages as server-sent events until the client
// disconnects. Comment lines keep idle connections open through proxies.
func (h *RingHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "ring")
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, cancel, err := h.svc.Subscribe(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case m, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(m)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", m.ID, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
