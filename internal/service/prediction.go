package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

const (
	defaultOpenLimit = 20
	maxOpenLimit     = 100
	defaultCategory  = "general"
)

// PredictionService owns forecasts and the calibration rollup derived from them.
type PredictionService struct {
	predictions domain.PredictionStore
	profiles    domain.ProfileStore
	tx          domain.Transactor
	logger      *zap.Logger
	now         func() time.Time
}

func NewPredictionService(ps domain.PredictionStore, profiles domain.ProfileStore, tx domain.Transactor, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		predictions: ps,
		profiles:    profiles,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *PredictionService) Create(ctx context.Context, owner uuid.UUID, question, category string, probability float64, deadline time.Time) (*domain.Prediction, error) {
	return s.create(ctx, owner, nil, question, category, probability, deadline)
}

// create stores a prediction; communityID scopes it to one community and is
// checked for membership by the caller.
func (s *PredictionService) create(ctx context.Context, owner uuid.UUID, communityID *uuid.UUID, question, category string, probability float64, deadline time.Time) (*domain.Prediction, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.Invalid("question is required")
	}
	if !domain.ValidUnit(probability) {
		return nil, domain.Invalid("probability must be between 0 and 1")
	}
	if !deadline.After(s.now()) {
		return nil, domain.Invalid("deadline must be in the future")
	}
	if category = strings.TrimSpace(category); category == "" {
		category = defaultCategory
	}

	p := &domain.Prediction{
		OwnerID:     owner,
		Question:    question,
		Category:    category,
		Probability: probability,
		Deadline:    deadline,
		CommunityID: communityID,
	}
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		if err := s.predictions.Create(ctx, p); err != nil {
			return err
		}
		return s.profiles.IncrementTotalPredictions(ctx, owner)
	})
	if err != nil {
		return nil, orNotFound(err, ErrProfileNotFound)
	}
	return p, nil
}

func (s *PredictionService) GetByID(ctx context.Context, owner, id uuid.UUID) (*domain.Prediction, error) {
	p, err := s.predictions.GetByID(ctx, id, owner)
	if err != nil {
		return nil, orNotFound(err, ErrPredictionNotFound)
	}
	return p, nil
}

func (s *PredictionService) List(ctx context.Context, owner uuid.UUID) ([]domain.Prediction, error) {
	return s.predictions.ListByOwner(ctx, owner)
}

// ListOpen returns unresolved predictions across all users, soonest deadline first.
func (s *PredictionService) ListOpen(ctx context.Context, limit int) ([]domain.Prediction, error) {
	if limit <= 0 {
		limit = defaultOpenLimit
	}
	if limit > maxOpenLimit {
		limit = maxOpenLimit
	}
	return s.predictions.ListOpen(ctx, limit)
}

func (s *PredictionService) UpdateProbability(ctx context.Context, owner, id uuid.UUID, probability float64) error {
	if !domain.ValidUnit(probability) {
		return domain.Invalid("probability must be between 0 and 1")
	}
	return orNotFound(s.predictions.UpdateProbability(ctx, id, owner, probability), ErrPredictionNotFound)
}

// ResolvePrediction scores the forecast against outcome and refreshes the
// owner's calibration. A prediction resolves once; later calls get
// domain.ErrAlreadyResolved.
func (s *PredictionService) ResolvePrediction(ctx context.Context, owner, id uuid.UUID, outcome bool) (*domain.Prediction, error) {
	p, err := s.predictions.GetByID(ctx, id, owner)
	if err != nil {
		return nil, orNotFound(err, ErrPredictionNotFound)
	}
	if p.Resolved {
		return nil, domain.ErrAlreadyResolved
	}

	brier := domain.Brier(p.Probability, outcome)
	resolvedAt := s.now().UTC()
	err = s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		if err := s.predictions.Resolve(ctx, id, owner, outcome, brier, resolvedAt); err != nil {
			return orNotFound(err, ErrPredictionNotFound)
		}
		_, err := s.RecomputeCalibration(ctx, owner)
		return err
	})
	if err != nil {
		// Misses from the prediction itself are already mapped, so a bare
		// store miss here is the owner's profile lock.
		return nil, orNotFound(err, ErrProfileNotFound)
	}

	p.Resolved = true
	p.Outcome = &outcome
	p.BrierScore = &brier
	p.ResolvedAt = &resolvedAt

	s.logger.Info("prediction resolved",
		zap.String("prediction_id", id.String()),
		zap.Bool("outcome", outcome),
		zap.Float64("brier", brier))
	return p, nil
}

// RecomputeCalibration rewrites the profile's Brier score and rank from the
// owner's resolved predictions.
func (s *PredictionService) RecomputeCalibration(ctx context.Context, owner uuid.UUID) (float64, error) {
	var brier float64
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		scores, err := s.predictions.ResolvedBrierScores(ctx, owner)
		if err != nil {
			return err
		}
		brier = domain.RollingBrier(scores)
		return s.profiles.UpdateCalibration(ctx, owner, brier, domain.CalibrationRankFor(brier))
	})
	if err != nil {
		return 0, orNotFound(err, ErrProfileNotFound)
	}
	return brier, nil
}

func (s *PredictionService) Stats(ctx context.Context, owner uuid.UUID) (domain.PredictionStats, error) {
	all, err := s.predictions.ListByOwner(ctx, owner)
	if err != nil {
		return domain.PredictionStats{}, err
	}
	stats := domain.PredictionStats{Total: len(all)}
	scores := make([]float64, 0, len(all))
	for _, p := range all {
		if !p.Resolved {
			continue
		}
		stats.Resolved++
		if p.BrierScore != nil {
			scores = append(scores, *p.BrierScore)
		}
	}
	stats.Pending = stats.Total - stats.Resolved
	stats.BrierScore = domain.RollingBrier(scores)
	stats.CalibrationRank = domain.CalibrationRankFor(stats.BrierScore)
	return stats, nil
}
