package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

type ProfileHandler struct {
	profiles *service.ProfileService
	summary  *service.SummaryService
}

func NewProfileHandler(profiles *service.ProfileService, summary *service.SummaryService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, summary: summary}
}

type registerRequest struct {
	Username string `json:"username"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	APIKey   string `json:"api_key"`
}

// Register is the unauthenticated bootstrap endpoint. The API key in the
// response is not retrievable later.
func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, apiKey, err := h.profiles.Register(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		APIKey:   apiKey,
	})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	p, err := h.profiles.Get(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Summary(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	sum, err := h.summary.Summary(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type awardXPRequest struct {
	XP int `json:"xp"`
}

func (h *ProfileHandler) AwardXP(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req awardXPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.profiles.AwardXP(r.Context(), owner, req.XP)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Skills(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	skills, err := h.profiles.Skills(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

type updateSkillRequest struct {
	Level *int `json:"level"`
}

// UpdateSkill sets the level of the skill named in the path. Out-of-range
// levels are clamped rather than rejected.
func (h *ProfileHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req updateSkillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Level == nil {
		writeError(w, http.StatusBadRequest, "level is required")
		return
	}
	sk, err := h.profiles.UpdateSkillLevel(r.Context(), owner, chi.URLParam(r, "name"), *req.Level)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

func (h *ProfileHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.profiles.Achievements(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *ProfileHandler) UserAchievements(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	unlocked, err := h.profiles.UserAchievements(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unlocked)
}

func (h *ProfileHandler) UnlockAchievement(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	ua, err := h.profiles.UnlockAchievement(r.Context(), owner, chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ua)
}

func (h *ProfileHandler) SyncAchievements(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	unlocked, err := h.profiles.SyncAchievements(r.Context(), owner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unlocked)
}
