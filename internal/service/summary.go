package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

// SummaryService assembles the profile dashboard from the feature services.
type SummaryService struct {
	profiles    *ProfileService
	beliefs     *BeliefService
	predictions *PredictionService
	biases      *BiasService
}

func NewSummaryService(profiles *ProfileService, beliefs *BeliefService, predictions *PredictionService, biases *BiasService) *SummaryService {
	return &SummaryService{profiles: profiles, beliefs: beliefs, predictions: predictions, biases: biases}
}

// Summary reads the profile and each aggregate concurrently.
func (s *SummaryService) Summary(ctx context.Context, owner uuid.UUID) (*domain.ProfileSummary, error) {
	var sum domain.ProfileSummary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.Profile, err = s.profiles.Get(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		sum.Beliefs, err = s.beliefs.BeliefStats(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		sum.Predictions, err = s.predictions.Stats(ctx, owner)
		return err
	})
	g.Go(func() (err error) {
		sum.Biases, err = s.biases.BiasStats(ctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sum, nil
}
