package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/store"
)

const DefaultTopicSimilarity = 0.85

type BeliefService struct {
	beliefs  domain.BeliefStore
	profiles domain.ProfileStore
	tx       domain.Transactor
	embedder domain.EmbeddingClient
	logger   *zap.Logger

	// TopicSimilarity is the minimum cosine similarity for two topics to
	// count as the same belief.
	TopicSimilarity float32
}

// NewBeliefService creates the belief tracker. embedder may be nil, in which
// case topics are matched exactly (case-insensitive).
func NewBeliefService(bs domain.BeliefStore, ps domain.ProfileStore, tx domain.Transactor, embedder domain.EmbeddingClient, logger *zap.Logger) *BeliefService {
	return &BeliefService{
		beliefs:         bs,
		profiles:        ps,
		tx:              tx,
		embedder:        embedder,
		logger:          logger,
		TopicSimilarity: DefaultTopicSimilarity,
	}
}

func (s *BeliefService) Create(ctx context.Context, owner uuid.UUID, topic string, initialConfidence float64, icon string) (*domain.Belief, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.Invalid("topic is required")
	}
	if !domain.ValidUnit(initialConfidence) {
		return nil, domain.Invalid("confidence must be between 0 and 1")
	}
	if icon == "" {
		icon = domain.DefaultBeliefIcon
	}

	b := &domain.Belief{
		OwnerID:           owner,
		Topic:             topic,
		Icon:              icon,
		InitialConfidence: initialConfidence,
		CurrentConfidence: initialConfidence,
		Status:            domain.BeliefEvolving,
		TopicEmbedding:    s.embed(ctx, topic),
	}
	if err := s.beliefs.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BeliefService) List(ctx context.Context, owner uuid.UUID) ([]domain.Belief, error) {
	return s.beliefs.ListByOwner(ctx, owner)
}

func (s *BeliefService) History(ctx context.Context, owner uuid.UUID) ([]domain.BeliefChange, error) {
	return s.beliefs.ListChanges(ctx, owner)
}

// UpdateBelief records a new confidence for a belief and appends the change
// to its history. When the append fails the belief update stands and the
// error is returned so the caller can retry the append.
func (s *BeliefService) UpdateBelief(ctx context.Context, owner, beliefID uuid.UUID, newConfidence float64, debateID *uuid.UUID) (*domain.Belief, error) {
	if !domain.ValidUnit(newConfidence) {
		return nil, domain.Invalid("confidence must be between 0 and 1")
	}

	b, err := s.beliefs.GetByID(ctx, beliefID, owner)
	if err != nil {
		return nil, orNotFound(err, ErrBeliefNotFound)
	}

	before := b.CurrentConfidence
	b.CurrentConfidence = newConfidence
	b.Status = domain.ClassifyBeliefChange(before, newConfidence)
	if err := s.beliefs.UpdateConfidence(ctx, b); err != nil {
		return nil, orNotFound(err, ErrBeliefNotFound)
	}

	change := &domain.BeliefChange{
		BeliefID:         b.ID,
		OwnerID:          owner,
		Topic:            b.Topic,
		ConfidenceBefore: before,
		ConfidenceAfter:  newConfidence,
		DebateID:         debateID,
	}
	if err := s.beliefs.AppendChange(ctx, change); err != nil {
		s.logger.Error("belief updated but change not recorded",
			zap.String("belief_id", b.ID.String()),
			zap.Float64("before", before),
			zap.Float64("after", newConfidence),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("belief updated",
		zap.String("belief_id", b.ID.String()),
		zap.Float64("before", before),
		zap.Float64("after", newConfidence),
		zap.String("status", string(b.Status)))

	if math.Abs(newConfidence-before) > domain.ViewsChangedThreshold {
		if _, err := s.RecomputeViewsChanged(ctx, owner); err != nil {
			s.logger.Warn("failed to recompute views changed",
				zap.String("owner_id", owner.String()),
				zap.Error(err))
		}
	}
	return b, nil
}

// BeliefStats summarizes the owner's beliefs. It never writes.
func (s *BeliefService) BeliefStats(ctx context.Context, owner uuid.UUID) (domain.BeliefStats, error) {
	beliefs, err := s.beliefs.ListByOwner(ctx, owner)
	if err != nil {
		return domain.BeliefStats{}, err
	}
	changes, err := s.beliefs.ListChanges(ctx, owner)
	if err != nil {
		return domain.BeliefStats{}, err
	}
	return domain.ComputeBeliefStats(beliefs, changes), nil
}

// RecomputeViewsChanged rewrites the profile's views-changed rollup from the
// change history.
func (s *BeliefService) RecomputeViewsChanged(ctx context.Context, owner uuid.UUID) (int, error) {
	var n int
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		changes, err := s.beliefs.ListChanges(ctx, owner)
		if err != nil {
			return err
		}
		n = domain.ComputeBeliefStats(nil, changes).ViewsChanged
		return orNotFound(s.profiles.UpdateViewsChanged(ctx, owner, n), ErrProfileNotFound)
	})
	if err != nil {
		return 0, orNotFound(err, ErrProfileNotFound)
	}
	return n, nil
}

// EnsureForTopic returns the owner's belief on topic, creating it with the
// given confidence on first use. created reports which happened.
func (s *BeliefService) EnsureForTopic(ctx context.Context, owner uuid.UUID, topic string, confidence float64) (b *domain.Belief, created bool, err error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, false, domain.Invalid("topic is required")
	}
	if !domain.ValidUnit(confidence) {
		return nil, false, domain.Invalid("confidence must be between 0 and 1")
	}

	if embedding := s.embed(ctx, topic); embedding != nil {
		b, err = s.beliefs.FindSimilarTopic(ctx, owner, embedding, s.TopicSimilarity)
	} else {
		b, err = s.beliefs.FindByTopic(ctx, owner, topic)
	}
	switch {
	case err == nil:
		return b, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err
	}

	b, err = s.Create(ctx, owner, topic, confidence, "")
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// embed returns nil when no embedder is configured or embedding fails; the
// caller then falls back to exact topic matching.
func (s *BeliefService) embed(ctx context.Context, topic string) []float32 {
	if s.embedder == nil {
		return nil
	}
	v, err := s.embedder.Embed(ctx, topic)
	if err != nil {
		s.logger.Warn("topic embedding failed", zap.String("topic", topic), zap.Error(err))
		return nil
	}
	return v
}
