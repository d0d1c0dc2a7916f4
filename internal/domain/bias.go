package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// CognitiveBias is one detection of a reasoning bias in something the user wrote.
type CognitiveBias struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	BiasType    string     `json:"bias_type"`
	BiasName    string     `json:"bias_name"`
	Severity    float64    `json:"severity"`
	Color       string     `json:"color"`
	Description string     `json:"description"`
	ExampleText string     `json:"example_text"`
	DebateID    *uuid.UUID `json:"debate_id,omitempty"`
	DetectedAt  time.Time  `json:"detected_at"`
}

type BiasExample struct {
	Text       string    `json:"text"`
	DetectedAt time.Time `json:"detected_at"`
}

type BiasGroup struct {
	Type          string      `json:"type"`
	Name          string      `json:"name"`
	Color         string      `json:"color"`
	Description   string      `json:"description"`
	Count         int         `json:"count"`
	AverageScore  float64     `json:"average_score"`
	RecentExample BiasExample `json:"recent_example"`
}

type BiasStats struct {
	TotalBiases  int         `json:"total_biases"`
	ActiveBiases int         `json:"active_biases"`
	BiasGroups   []BiasGroup `json:"bias_groups"`
}

// ComputeBiasStats groups detections by type. Groups are ordered by average
// severity, highest first, with ties broken by type.
func ComputeBiasStats(events []CognitiveBias) BiasStats {
	type acc struct {
		group BiasGroup
		sum   float64
	}
	byType := make(map[string]*acc)
	for _, e := range events {
		a, ok := byType[e.BiasType]
		if !ok {
			a = &acc{group: BiasGroup{
				Type:        e.BiasType,
				Name:        e.BiasName,
				Color:       e.Color,
				Description: e.Description,
			}}
			byType[e.BiasType] = a
		}
		a.sum += e.Severity
		a.group.Count++
		if a.group.Count == 1 || e.DetectedAt.After(a.group.RecentExample.DetectedAt) {
			a.group.RecentExample = BiasExample{Text: e.ExampleText, DetectedAt: e.DetectedAt}
		}
	}

	stats := BiasStats{TotalBiases: len(events), BiasGroups: make([]BiasGroup, 0, len(byType))}
	for _, a := range byType {
		a.group.AverageScore = a.sum / float64(a.group.Count)
		if a.group.AverageScore > ActiveBiasThreshold {
			stats.ActiveBiases++
		}
		stats.BiasGroups = append(stats.BiasGroups, a.group)
	}
	sort.Slice(stats.BiasGroups, func(i, j int) bool {
		gi, gj := stats.BiasGroups[i], stats.BiasGroups[j]
		if gi.AverageScore != gj.AverageScore {
			return gi.AverageScore > gj.AverageScore
		}
		return gi.Type < gj.Type
	})
	return stats
}
