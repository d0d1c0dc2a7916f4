package domain

import "math"

// Calm-score sensitivities. They belong to different features and are tuned
// independently.
const (
	DeEscalationSensitivity = 0.3
	SteelManSensitivity     = 0.2
)

// Belief change tiers.
const (
	ShatteredThreshold    = 0.5
	ShiftedThreshold      = 0.2
	ViewsChangedThreshold = 0.3
)

// Sentiment polarity bounds for de-escalation turns.
const (
	PositiveTurnThreshold = 0.6
	NegativeTurnThreshold = 0.4
)

const (
	// ActiveBiasThreshold is the average severity above which a bias type counts as active.
	ActiveBiasThreshold = 0.3

	// DefaultBrierScore is reported before any prediction has resolved.
	DefaultBrierScore = 0.5

	// BaselineCalmScore is the calm score of a user with no completed training.
	BaselineCalmScore = 0.5

	XPPerLevel = 100
)

// Brier returns the squared error of a probability forecast against a binary
// outcome. 0 is a perfect forecast, 1 is maximally wrong.
func Brier(probability float64, outcome bool) float64 {
	o := 0.0
	if outcome {
		o = 1
	}
	d := probability - o
	return d * d
}

// CalmDelta moves current toward calm or agitation by how far the sentiment
// score sits from neutral, scaled by sensitivity k.
func CalmDelta(sentimentScore, current, k float64) float64 {
	return Clamp01(current + (sentimentScore-0.5)*k)
}

// ClassifyBeliefChange labels a confidence update. Magnitude tiers are checked
// before direction.
func ClassifyBeliefChange(before, after float64) BeliefStatus {
	change := math.Abs(after - before)
	switch {
	case change > ShatteredThreshold:
		return BeliefShattered
	case change > ShiftedThreshold:
		return BeliefShifted
	case after > before:
		return BeliefReinforced
	default:
		return BeliefEvolving
	}
}

type CalibrationRank string

const (
	RankSuperforecaster CalibrationRank = "Superforecaster"
	RankExpert          CalibrationRank = "Expert"
	RankAdvanced        CalibrationRank = "Advanced"
	RankIntermediate    CalibrationRank = "Intermediate"
	RankNovice          CalibrationRank = "Novice"
)

// CalibrationRankFor maps a rolling Brier score to a rank. Bounds are
// exclusive upper limits checked in ascending order.
func CalibrationRankFor(brier float64) CalibrationRank {
	switch {
	case brier < 0.1:
		return RankSuperforecaster
	case brier < 0.2:
		return RankExpert
	case brier < 0.3:
		return RankAdvanced
	case brier < 0.4:
		return RankIntermediate
	default:
		return RankNovice
	}
}

func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

type SteelManMode string

const (
	SteelManStrong   SteelManMode = "steel_man"
	SteelManBalanced SteelManMode = "balanced"
	SteelManStraw    SteelManMode = "straw_man"
)

func SteelManTier(level float64) SteelManMode {
	switch {
	case level > 0.7:
		return SteelManStrong
	case level < 0.3:
		return SteelManStraw
	default:
		return SteelManBalanced
	}
}

// EscalationLevel describes how agitated the simulated troll should be given
// the user's current calm score.
func EscalationLevel(calm float64) string {
	switch {
	case calm < 0.3:
		return "highly aggressive"
	case calm < 0.7:
		return "moderately frustrated"
	default:
		return "mildly annoyed"
	}
}

func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ValidUnit reports whether v lies in [0,1].
func ValidUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
