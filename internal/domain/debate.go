package domain

import (
	"time"

	"github.com/google/uuid"
)

type DebateStatus string

const (
	DebateActive DebateStatus = "active"
	DebatePaused DebateStatus = "paused"
	DebateEnded  DebateStatus = "ended"
)

type SenderType string

const (
	SenderUser   SenderType = "user"
	SenderAI     SenderType = "ai"
	SenderSystem SenderType = "system"
)

const (
	// DefaultSteelManLevel is the opening steel-man level of a new debate.
	DefaultSteelManLevel = 0.5

	// DebateXP is awarded when a debate ends.
	DebateXP = 25
)

type Debate struct {
	ID            uuid.UUID    `json:"id"`
	OwnerID       uuid.UUID    `json:"owner_id"`
	PersonaID     string       `json:"persona_id"`
	Topic         string       `json:"topic"`
	SteelManLevel float64      `json:"steel_man_level"`
	Status        DebateStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	EndedAt       *time.Time   `json:"ended_at,omitempty"`
}

type DebateMessage struct {
	ID         uuid.UUID  `json:"id"`
	DebateID   uuid.UUID  `json:"debate_id"`
	SenderType SenderType `json:"sender_type"`
	Content    string     `json:"content"`
	FactCheck  *FactCheck `json:"fact_check,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type FactCheckSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type FactCheck struct {
	Verified    bool              `json:"verified"`
	Confidence  float64           `json:"confidence"`
	Explanation string            `json:"explanation"`
	Sources     []FactCheckSource `json:"sources"`
}

// Persona describes the AI opponent a debate is held against.
type Persona struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

var personas = []Persona{
	{ID: "1", Name: "Thomas Sowell (2025)", Topic: "Welfare & Economics", Description: "Facts over feelings. Expect rigorous economic analysis.", Difficulty: "Hard"},
	{ID: "2", Name: "Richard Dawkins", Topic: "Existence of God", Description: "Unapologetic rationalism and evolutionary biology.", Difficulty: "Hard"},
	{ID: "3", Name: "Scott Alexander + Bryan Caplan", Topic: "Open Borders", Description: "Utilitarian ethics meets libertarian economics.", Difficulty: "Medium"},
	{ID: "4", Name: "The Devil's Advocate", Topic: "Any Topic", Description: "The smartest living expert who disagrees with you.", Difficulty: "Extreme"},
}

// Personas returns the opponent catalog.
func Personas() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas)
	return out
}

func PersonaByID(id string) (Persona, bool) {
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}
