package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinSkillLevel = 0
	MaxSkillLevel = 100
)

// CognitiveSkill is one of a user's tracked reasoning skills, levelled 0-100.
type CognitiveSkill struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	SkillName string    `json:"skill_name"`
	Level     int       `json:"level"`
	Color     string    `json:"color"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSkills are seeded at level 0 for every new user.
var DefaultSkills = []CognitiveSkill{
	{SkillName: "Steel-manning", Color: "#4CAF50"},
	{SkillName: "De-escalation", Color: "#2196F3"},
	{SkillName: "Fact-checking", Color: "#FFC107"},
	{SkillName: "Cognitive Flex", Color: "#9C27B0"},
}

// ClampSkillLevel bounds level to [MinSkillLevel, MaxSkillLevel].
func ClampSkillLevel(level int) int {
	return min(MaxSkillLevel, max(MinSkillLevel, level))
}

// Achievement is a catalog entry. Codes are stable identifiers.
type Achievement struct {
	ID               uuid.UUID `json:"id"`
	Code             string    `json:"code"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	RequirementType  string    `json:"requirement_type"`
	RequirementCount int       `json:"requirement_count"`
}

type UserAchievement struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	AchievementID uuid.UUID    `json:"achievement_id"`
	Achievement   *Achievement `json:"achievement,omitempty"`
	UnlockedAt    time.Time    `json:"unlocked_at"`
}

// Requirement types that can be checked against profile rollups.
const (
	RequirementDebates          = "debates"
	RequirementViewsChanged     = "views_changed"
	RequirementPredictions      = "predictions"
	RequirementCalibrationRank  = "calibration_rank"
	RequirementTrainingSessions = "training_sessions"
	RequirementLevel            = "level"
)

// Earned reports whether p satisfies a's requirement. Requirement types the
// profile does not track are never earned automatically.
func (a Achievement) Earned(p *UserProfile) bool {
	var progress int
	switch a.RequirementType {
	case RequirementDebates:
		progress = p.TotalDebates
	case RequirementViewsChanged:
		progress = p.ViewsChanged
	case RequirementPredictions:
		progress = p.TotalPredictions
	case RequirementTrainingSessions:
		progress = p.TotalTrainingSessions
	case RequirementLevel:
		progress = p.Level
	case RequirementCalibrationRank:
		if p.CalibrationRank == RankSuperforecaster {
			progress = 1
		}
	default:
		return false
	}
	return progress >= max(1, a.RequirementCount)
}
