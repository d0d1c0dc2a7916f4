package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrier(t *testing.T) {
	tests := []struct {
		name    string
		p       float64
		outcome bool
		want    float64
	}{
		{"certain and right", 1, true, 0},
		{"certain and wrong", 0, true, 1},
		{"coin flip true", 0.5, true, 0.25},
		{"coin flip false", 0.5, false, 0.25},
		{"confident no, came true", 0.3, true, 0.49},
		{"confident no, came false", 0.3, false, 0.09},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Brier(tt.p, tt.outcome), 1e-9)
		})
	}
}

func TestBrierMatchesSquaredError(t *testing.T) {
	for i := 0; i <= 100; i++ {
		p := float64(i) / 100
		if got, want := Brier(p, true), (p-1)*(p-1); got != want {
			t.Errorf("Brier(%v, true) = %v, want %v", p, got, want)
		}
		if got, want := Brier(p, false), p*p; got != want {
			t.Errorf("Brier(%v, false) = %v, want %v", p, got, want)
		}
	}
}

func TestClassifyBeliefChange(t *testing.T) {
	tests := []struct {
		name          string
		before, after float64
		want          BeliefStatus
	}{
		{"no change", 0.5, 0.5, BeliefEvolving},
		{"large drop", 0.5, 0.05, BeliefShifted},
		{"collapse", 0.9, 0.1, BeliefShattered},
		{"boundary 0.2 upward", 0.3, 0.5, BeliefReinforced},
		{"small drop", 0.5, 0.45, BeliefEvolving},
		{"small rise", 0.5, 0.55, BeliefReinforced},
		{"shattered upward", 0.1, 0.9, BeliefShattered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyBeliefChange(tt.before, tt.after)
			if got != tt.want {
				t.Errorf("ClassifyBeliefChange(%v, %v) = %v, want %v", tt.before, tt.after, got, tt.want)
			}
		})
	}
}

func TestCalibrationRankFor(t *testing.T) {
	tests := []struct {
		brier float64
		want  CalibrationRank
	}{
		{0, RankSuperforecaster},
		{0.0999, RankSuperforecaster},
		{0.1, RankExpert},
		{0.1667, RankExpert},
		{0.2, RankAdvanced},
		{0.3, RankIntermediate},
		{0.4, RankNovice},
		{0.5, RankNovice},
		{1, RankNovice},
	}

	for _, tt := range tests {
		if got := CalibrationRankFor(tt.brier); got != tt.want {
			t.Errorf("CalibrationRankFor(%v) = %v, want %v", tt.brier, got, tt.want)
		}
	}
}

func TestRollingBrier(t *testing.T) {
	t.Run("no resolved predictions", func(t *testing.T) {
		assert.Equal(t, 0.5, RollingBrier(nil))
		assert.Equal(t, RankNovice, CalibrationRankFor(RollingBrier(nil)))
	})

	t.Run("mean of resolved scores lands in Expert", func(t *testing.T) {
		got := RollingBrier([]float64{0.0, 0.2, 0.3})
		assert.InDelta(t, 0.1667, got, 1e-4)
		assert.Equal(t, RankExpert, CalibrationRankFor(got))
	})
}

func TestCalmDelta(t *testing.T) {
	tests := []struct {
		name                  string
		score, current, k, want float64
	}{
		{"neutral sentiment", 0.5, 0.4, DeEscalationSensitivity, 0.4},
		{"calm reply", 1, 0.5, DeEscalationSensitivity, 0.65},
		{"hostile reply", 0, 0.5, DeEscalationSensitivity, 0.35},
		{"clamped high", 1, 0.95, DeEscalationSensitivity, 1},
		{"clamped low", 0, 0.05, DeEscalationSensitivity, 0},
		{"steel man sensitivity", 1, 0.5, SteelManSensitivity, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalmDelta(tt.score, tt.current, tt.k), 1e-9)
		})
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct{ xp, want int }{
		{0, 1}, {99, 1}, {100, 2}, {250, 3}, {-5, 1},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestSteelManTier(t *testing.T) {
	assert.Equal(t, SteelManStrong, SteelManTier(0.71))
	assert.Equal(t, SteelManBalanced, SteelManTier(0.7))
	assert.Equal(t, SteelManBalanced, SteelManTier(0.3))
	assert.Equal(t, SteelManStraw, SteelManTier(0.29))
}

func TestEscalationLevel(t *testing.T) {
	assert.Equal(t, "highly aggressive", EscalationLevel(0.1))
	assert.Equal(t, "moderately frustrated", EscalationLevel(0.3))
	assert.Equal(t, "mildly annoyed", EscalationLevel(0.7))
}

func TestValidUnit(t *testing.T) {
	assert.True(t, ValidUnit(0))
	assert.True(t, ValidUnit(1))
	assert.False(t, ValidUnit(-0.01))
	assert.False(t, ValidUnit(1.01))
}

func TestComputeBiasStats(t *testing.T) {
	now := time.Now()
	events := []CognitiveBias{
		{BiasType: "A", BiasName: "Anchoring", Severity: 0.8, ExampleText: "old", DetectedAt: now.Add(-time.Hour)},
		{BiasType: "A", BiasName: "Anchoring", Severity: 0.4, ExampleText: "new", DetectedAt: now},
		{BiasType: "B", BiasName: "Bandwagon", Severity: 0.2, ExampleText: "only", DetectedAt: now},
	}

	stats := ComputeBiasStats(events)

	assert.Equal(t, 3, stats.TotalBiases)
	assert.Equal(t, 1, stats.ActiveBiases)
	require.Len(t, stats.BiasGroups, 2)
	assert.Equal(t, "A", stats.BiasGroups[0].Type)
	assert.InDelta(t, 0.6, stats.BiasGroups[0].AverageScore, 1e-9)
	assert.Equal(t, 2, stats.BiasGroups[0].Count)
	assert.Equal(t, "new", stats.BiasGroups[0].RecentExample.Text)
	assert.Equal(t, "B", stats.BiasGroups[1].Type)
	assert.InDelta(t, 0.2, stats.BiasGroups[1].AverageScore, 1e-9)

	assert.Equal(t, stats, ComputeBiasStats(events), "aggregation must be a pure read")
}

func TestComputeBiasStatsTiesOrderedByType(t *testing.T) {
	stats := ComputeBiasStats([]CognitiveBias{
		{BiasType: "z", Severity: 0.5},
		{BiasType: "a", Severity: 0.5},
	})
	require.Len(t, stats.BiasGroups, 2)
	assert.Equal(t, "a", stats.BiasGroups[0].Type)
	assert.Equal(t, 2, stats.ActiveBiases)
}

func TestComputeBiasStatsEmpty(t *testing.T) {
	stats := ComputeBiasStats(nil)
	assert.Zero(t, stats.TotalBiases)
	assert.Empty(t, stats.BiasGroups)
}

func TestComputeBeliefStats(t *testing.T) {
	id := uuid.New()
	beliefs := []Belief{{ID: id}, {ID: uuid.New()}}
	changes := []BeliefChange{
		{BeliefID: id, ConfidenceBefore: 0.9, ConfidenceAfter: 0.1},
		{BeliefID: id, ConfidenceBefore: 0.5, ConfidenceAfter: 0.6},
		{BeliefID: id, ConfidenceBefore: 0.2, ConfidenceAfter: 0.5},
	}

	stats := ComputeBeliefStats(beliefs, changes)
	assert.Equal(t, 2, stats.TotalBeliefs)
	assert.Equal(t, 1, stats.ViewsChanged)
	assert.InDelta(t, (0.8+0.1+0.3)/3, stats.AverageConfidenceChange, 1e-9)
	assert.Equal(t, stats, ComputeBeliefStats(beliefs, changes))

	empty := ComputeBeliefStats(nil, nil)
	assert.Zero(t, empty.AverageConfidenceChange)
}

func TestKeywordSentiment(t *testing.T) {
	t.Run("calm", func(t *testing.T) {
		s := KeywordSentiment("I UNDERSTAND your point, thanks")
		assert.ElementsMatch(t, []string{"understand", "point", "thanks"}, s.CalmWords)
		assert.Empty(t, s.AggressiveWords)
		assert.InDelta(t, 0.8, s.Score, 1e-9)
	})

	t.Run("aggressive", func(t *testing.T) {
		s := KeywordSentiment("That is stupid and wrong")
		assert.ElementsMatch(t, []string{"wrong", "stupid"}, s.AggressiveWords)
		assert.InDelta(t, 0.2, s.Score, 1e-9)
	})

	t.Run("clamped at zero", func(t *testing.T) {
		s := KeywordSentiment("wrong stupid idiot dumb hate ridiculous pathetic")
		assert.Equal(t, 0.0, s.Score)
	})

	t.Run("neutral", func(t *testing.T) {
		s := KeywordSentiment("the sky is blue")
		assert.Equal(t, 0.5, s.Score)
		assert.NotNil(t, s.CalmWords)
	})
}

func TestSessionApplyTurn(t *testing.T) {
	s := DeEscalationSession{InitialCalmScore: 0.5, CurrentCalmScore: 0.5}

	s.ApplyTurn(Sentiment{Score: 0.9})
	assert.InDelta(t, 0.62, s.CurrentCalmScore, 1e-9)
	assert.Equal(t, 1, s.PositiveTurns)

	s.ApplyTurn(Sentiment{Score: 0.5})
	assert.Equal(t, 1, s.PositiveTurns)
	assert.Zero(t, s.NegativeTurns)

	s.ApplyTurn(Sentiment{Score: 0.1})
	assert.Equal(t, 1, s.NegativeTurns)
	assert.Equal(t, 3, s.TurnCount)
}

func TestProfileCalmScore(t *testing.T) {
	final := func(v float64) *float64 { return &v }

	assert.Equal(t, BaselineCalmScore, ProfileCalmScore(nil))

	one := []DeEscalationSession{{InitialCalmScore: 0.5, FinalCalmScore: final(0.7)}}
	assert.InDelta(t, 0.7, ProfileCalmScore(one), 1e-9)

	worse := []DeEscalationSession{{InitialCalmScore: 0.9, FinalCalmScore: final(0.1)}}
	assert.Equal(t, 0.0, ProfileCalmScore(worse))

	better := []DeEscalationSession{{InitialCalmScore: 0.0, FinalCalmScore: final(1)}}
	assert.Equal(t, 1.0, ProfileCalmScore(better))
}

func TestNewProfile(t *testing.T) {
	p := NewProfile(uuid.New(), "ada")
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, DefaultBrierScore, p.BrierScore)
	assert.Equal(t, RankNovice, p.CalibrationRank)
	assert.Equal(t, BaselineCalmScore, p.CalmScore)
}

func TestPersonaByID(t *testing.T) {
	p, ok := PersonaByID("2")
	require.True(t, ok)
	assert.Equal(t, "Richard Dawkins", p.Name)

	_, ok = PersonaByID("nope")
	assert.False(t, ok)

	list := Personas()
	list[0].Name = "mutated"
	again, _ := PersonaByID("1")
	assert.NotEqual(t, "mutated", again.Name)
}
