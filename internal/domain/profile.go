package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated principal. Only the SHA-256 of its API key is kept.
type User struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	APIKeyHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserProfile holds per-user rollups. The scoring fields are derived from
// event history and only written by the aggregator services.
type UserProfile struct {
	ID                    uuid.UUID       `json:"id"`
	Username              string          `json:"username"`
	XP                    int             `json:"xp"`
	Level                 int             `json:"level"`
	TotalDebates          int             `json:"total_debates"`
	ViewsChanged          int             `json:"views_changed"`
	BrierScore            float64         `json:"brier_score"`
	CalibrationRank       CalibrationRank `json:"calibration_rank"`
	TotalPredictions      int             `json:"total_predictions"`
	CalmScore             float64         `json:"calm_score"`
	TotalTrainingSessions int             `json:"total_training_sessions"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// NewProfile returns the rollups of a user with no history.
func NewProfile(userID uuid.UUID, username string) *UserProfile {
	return &UserProfile{
		ID:              userID,
		Username:        username,
		Level:           LevelForXP(0),
		BrierScore:      DefaultBrierScore,
		CalibrationRank: CalibrationRankFor(DefaultBrierScore),
		CalmScore:       BaselineCalmScore,
	}
}

// ProfileSummary is the dashboard view combining the profile with the live
// aggregates of each feature.
type ProfileSummary struct {
	Profile     *UserProfile    `json:"profile"`
	Beliefs     BeliefStats     `json:"beliefs"`
	Predictions PredictionStats `json:"predictions"`
	Biases      BiasStats       `json:"biases"`
}
