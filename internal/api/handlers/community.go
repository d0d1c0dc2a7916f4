package handlers

import (
	"net/http"
	"time"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

type createCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsLocked    bool   `json:"is_locked"`
	MaxMembers  int    `json:"max_members"`
}

func (h *CommunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createCommunityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), owner, req.Name, req.Description, req.IsLocked, req.MaxMembers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CommunityHandler) Mine(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	communities, err := h.svc.Mine(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communities)
}

func (h *CommunityHandler) Available(w http.ResponseWriter, r *http.Request) {
	communities, err := h.svc.Available(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communities)
}

func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id, viewer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	var req domain.CommunityUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.Update(r.Context(), id, actor, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CommunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, actor); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type joinCommunityRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *CommunityHandler) Join(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	var req joinCommunityRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.Join(r.Context(), id, owner, req.InviteCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *CommunityHandler) Leave(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	if err := h.svc.Leave(r.Context(), id, owner); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CommunityHandler) Members(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	members, err := h.svc.Members(r.Context(), id, viewer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type updateRoleRequest struct {
	Role domain.CommunityRole `json:"role"`
}

func (h *CommunityHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	target, ok := pathUUID(w, r, "userID", "user")
	if !ok {
		return
	}
	var req updateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.UpdateMemberRole(r.Context(), id, actor, target, req.Role); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CommunityHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	target, ok := pathUUID(w, r, "userID", "user")
	if !ok {
		return
	}
	if err := h.svc.RemoveMember(r.Context(), id, actor, target); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createInviteRequest struct {
	ExpiresInDays int  `json:"expires_in_days"`
	MaxUses       *int `json:"max_uses"`
}

func (h *CommunityHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	var req createInviteRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	inv, err := h.svc.CreateInvite(r.Context(), id, actor, req.ExpiresInDays, req.MaxUses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *CommunityHandler) Invites(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	invites, err := h.svc.Invites(r.Context(), id, actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

type communityPredictionRequest struct {
	Question    string    `json:"question"`
	Category    string    `json:"category"`
	Probability *float64  `json:"probability"`
	Deadline    time.Time `json:"deadline"`
}

func (h *CommunityHandler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	var req communityPredictionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Probability == nil {
		writeError(w, http.StatusBadRequest, "probability is required")
		return
	}
	p, err := h.svc.CreatePrediction(r.Context(), id, owner, req.Question, req.Category, *req.Probability, req.Deadline)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CommunityHandler) CreateRing(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "community")
	if !ok {
		return
	}
	var req createRingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.CreateRing(r.Context(), id, owner, req.Topic, req.RingOptions)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// PredictionFeed and RingFeed list content from the caller's communities.
// Unscoped content is included unless include_global=false.
func (h *CommunityHandler) PredictionFeed(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	includeGlobal, err := queryBool(r, "include_global", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "include_global must be a boolean")
		return
	}
	predictions, err := h.svc.ScopedPredictions(r.Context(), owner, includeGlobal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

func (h *CommunityHandler) RingFeed(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	includeGlobal, err := queryBool(r, "include_global", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "include_global must be a boolean")
		return
	}
	rings, err := h.svc.ScopedRings(r.Context(), owner, includeGlobal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rings)
}
