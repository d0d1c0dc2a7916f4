package domain

import (
	"time"

	"github.com/google/uuid"
)

// Prediction is a probability forecast on a yes/no question. It resolves
// exactly once.
type Prediction struct {
	ID                   uuid.UUID  `json:"id"`
	OwnerID              uuid.UUID  `json:"owner_id"`
	Question             string     `json:"question"`
	Category             string     `json:"category"`
	Probability          float64    `json:"probability"`
	CommunityProbability *float64   `json:"community_probability,omitempty"`
	Deadline             time.Time  `json:"deadline"`
	CommunityID          *uuid.UUID `json:"community_id,omitempty"`
	Resolved             bool       `json:"resolved"`
	Outcome              *bool      `json:"outcome,omitempty"`
	BrierScore           *float64   `json:"brier_score,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
}

type PredictionStats struct {
	Total           int             `json:"total"`
	Resolved        int             `json:"resolved"`
	Pending         int             `json:"pending"`
	BrierScore      float64         `json:"brier_score"`
	CalibrationRank CalibrationRank `json:"calibration_rank"`
}

// RollingBrier averages the Brier scores of resolved predictions, falling
// back to DefaultBrierScore when none have resolved.
func RollingBrier(scores []float64) float64 {
	if len(scores) == 0 {
		return DefaultBrierScore
	}
	return Mean(scores)
}
