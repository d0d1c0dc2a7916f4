package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type DeEscalationSession struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	ScenarioType     string     `json:"scenario_type"`
	InitialCalmScore float64    `json:"initial_calm_score"`
	CurrentCalmScore float64    `json:"current_calm_score"`
	FinalCalmScore   *float64   `json:"final_calm_score,omitempty"`
	TurnCount        int        `json:"turn_count"`
	PositiveTurns    int        `json:"positive_turns"`
	NegativeTurns    int        `json:"negative_turns"`
	Completed        bool       `json:"completed"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// ApplyTurn folds one turn's sentiment into the running counters.
func (s *DeEscalationSession) ApplyTurn(sentiment Sentiment) {
	s.CurrentCalmScore = CalmDelta(sentiment.Score, s.CurrentCalmScore, DeEscalationSensitivity)
	s.TurnCount++
	switch {
	case sentiment.Score > PositiveTurnThreshold:
		s.PositiveTurns++
	case sentiment.Score < NegativeTurnThreshold:
		s.NegativeTurns++
	}
}

// Improvement is final minus initial calm score; zero until completed.
func (s DeEscalationSession) Improvement() float64 {
	if s.FinalCalmScore == nil {
		return 0
	}
	return *s.FinalCalmScore - s.InitialCalmScore
}

type Sentiment struct {
	Score           float64  `json:"score"`
	CalmWords       []string `json:"calm_words"`
	AggressiveWords []string `json:"aggressive_words"`
}

type DeEscalationTurn struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	UserText   string    `json:"user_text"`
	PromptText string    `json:"prompt_text"`
	Sentiment  Sentiment `json:"sentiment"`
	CreatedAt  time.Time `json:"created_at"`
}

var (
	CalmWords       = []string{"understand", "agree", "respect", "consider", "appreciate", "valid", "point", "perspective", "thanks", "sorry"}
	AggressiveWords = []string{"wrong", "stupid", "idiot", "dumb", "hate", "ridiculous", "pathetic"}
)

// KeywordSentiment scores text locally by counting calm and aggressive words.
// It is used whenever the text-generation service cannot produce a usable
// analysis.
func KeywordSentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	s := Sentiment{CalmWords: []string{}, AggressiveWords: []string{}}
	for _, w := range CalmWords {
		if strings.Contains(lower, w) {
			s.CalmWords = append(s.CalmWords, w)
		}
	}
	for _, w := range AggressiveWords {
		if strings.Contains(lower, w) {
			s.AggressiveWords = append(s.AggressiveWords, w)
		}
	}
	s.Score = Clamp01(0.5 + 0.1*float64(len(s.CalmWords)) - 0.15*float64(len(s.AggressiveWords)))
	return s
}

// ProfileCalmScore is the baseline plus the mean improvement across completed
// sessions, clamped to [0,1].
func ProfileCalmScore(completed []DeEscalationSession) float64 {
	if len(completed) == 0 {
		return BaselineCalmScore
	}
	improvements := make([]float64, 0, len(completed))
	for _, s := range completed {
		improvements = append(improvements, s.Improvement())
	}
	return Clamp01(BaselineCalmScore + Mean(improvements))
}
