package domain

import (
	"time"

	"github.com/google/uuid"
)

type BeliefStatus string

const (
	BeliefEvolving   BeliefStatus = "evolving"
	BeliefShifted    BeliefStatus = "shifted"
	BeliefShattered  BeliefStatus = "shattered"
	BeliefReinforced BeliefStatus = "reinforced"
)

const DefaultBeliefIcon = "lightbulb"

// Belief is a user's stance on a topic and how confident they currently are in it.
type Belief struct {
	ID                uuid.UUID    `json:"id"`
	OwnerID           uuid.UUID    `json:"owner_id"`
	Topic             string       `json:"topic"`
	Icon              string       `json:"icon"`
	InitialConfidence float64      `json:"initial_confidence"`
	CurrentConfidence float64      `json:"current_confidence"`
	Status            BeliefStatus `json:"status"`
	TopicEmbedding    []float32    `json:"-"`
	LastUpdatedAt     time.Time    `json:"last_updated_at"`
	CreatedAt         time.Time    `json:"created_at"`
}

// BeliefChange is an append-only record of one confidence update.
type BeliefChange struct {
	ID               uuid.UUID  `json:"id"`
	BeliefID         uuid.UUID  `json:"belief_id"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	Topic            string     `json:"topic"`
	ConfidenceBefore float64    `json:"confidence_before"`
	ConfidenceAfter  float64    `json:"confidence_after"`
	DebateID         *uuid.UUID `json:"debate_id,omitempty"`
	ChangedAt        time.Time  `json:"changed_at"`
}

// Magnitude is the absolute confidence movement of the change.
func (c BeliefChange) Magnitude() float64 {
	d := c.ConfidenceAfter - c.ConfidenceBefore
	if d < 0 {
		return -d
	}
	return d
}

type BeliefStats struct {
	TotalBeliefs            int     `json:"total_beliefs"`
	ViewsChanged            int     `json:"views_changed"`
	AverageConfidenceChange float64 `json:"average_confidence_change"`
}

// ComputeBeliefStats derives the tracker summary from a user's beliefs and change history.
func ComputeBeliefStats(beliefs []Belief, changes []BeliefChange) BeliefStats {
	stats := BeliefStats{TotalBeliefs: len(beliefs)}
	if len(changes) == 0 {
		return stats
	}
	var total float64
	for _, c := range changes {
		m := c.Magnitude()
		total += m
		if m > ViewsChangedThreshold {
			stats.ViewsChanged++
		}
	}
	stats.AverageConfidenceChange = total / float64(len(changes))
	return stats
}
