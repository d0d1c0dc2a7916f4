package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

func newTestBeliefService(embedder domain.EmbeddingClient) (*BeliefService, *mockBeliefStore, *mockProfileStore, uuid.UUID) {
	beliefs := newMockBeliefStore()
	profiles := newMockProfileStore()
	owner := uuid.New()
	profiles.add(owner)
	svc := NewBeliefService(beliefs, profiles, &mockTx{profiles: profiles}, embedder, zap.NewNop())
	return svc, beliefs, profiles, owner
}

func TestBeliefService_UpdateBeliefClassifiesAndRecords(t *testing.T) {
	ctx := context.Background()
	svc, beliefs, _, owner := newTestBeliefService(nil)

	b, err := svc.Create(ctx, owner, "Universal basic income", 0.8, "")
	require.NoError(t, err)
	assert.Equal(t, domain.BeliefEvolving, b.Status)
	assert.Equal(t, domain.DefaultBeliefIcon, b.Icon)

	debateID := uuid.New()
	updated, err := svc.UpdateBelief(ctx, owner, b.ID, 0.5, &debateID)
	require.NoError(t, err)
	assert.Equal(t, domain.BeliefShifted, updated.Status)
	assert.Equal(t, 0.5, updated.CurrentConfidence)

	require.Len(t, beliefs.changes, 1)
	change := beliefs.changes[0]
	assert.Equal(t, 0.8, change.ConfidenceBefore)
	assert.Equal(t, 0.5, change.ConfidenceAfter)
	assert.Equal(t, "Universal basic income", change.Topic)
	require.NotNil(t, change.DebateID)
	assert.Equal(t, debateID, *change.DebateID)
}

func TestBeliefService_UpdateBeliefTiers(t *testing.T) {
	tests := []struct {
		name   string
		before float64
		after  float64
		want   domain.BeliefStatus
	}{
		{"shattered", 0.9, 0.2, domain.BeliefShattered},
		{"shifted down", 0.7, 0.4, domain.BeliefShifted},
		{"reinforced", 0.6, 0.7, domain.BeliefReinforced},
		{"small drop", 0.6, 0.5, domain.BeliefEvolving},
		{"unchanged", 0.6, 0.6, domain.BeliefEvolving},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _, _, owner := newTestBeliefService(nil)
			b, err := svc.Create(ctx, owner, "topic", tt.before, "")
			require.NoError(t, err)

			updated, err := svc.UpdateBelief(ctx, owner, b.ID, tt.after, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated.Status)
		})
	}
}

func TestBeliefService_UpdateBeliefRecomputesViewsChanged(t *testing.T) {
	ctx := context.Background()
	svc, _, profiles, owner := newTestBeliefService(nil)

	b, err := svc.Create(ctx, owner, "Nuclear power", 0.2, "")
	require.NoError(t, err)

	_, err = svc.UpdateBelief(ctx, owner, b.ID, 0.3, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, profiles.profiles[owner].ViewsChanged)

	_, err = svc.UpdateBelief(ctx, owner, b.ID, 0.9, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, profiles.profiles[owner].ViewsChanged)
}

func TestBeliefService_UpdateBeliefErrors(t *testing.T) {
	ctx := context.Background()
	svc, beliefs, _, owner := newTestBeliefService(nil)
	b, err := svc.Create(ctx, owner, "Free will", 0.5, "")
	require.NoError(t, err)

	_, err = svc.UpdateBelief(ctx, owner, b.ID, 1.2, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateBelief(ctx, owner, uuid.New(), 0.4, nil)
	assert.ErrorIs(t, err, ErrBeliefNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdateBelief(ctx, uuid.New(), b.ID, 0.4, nil)
	assert.ErrorIs(t, err, ErrBeliefNotFound, "another owner's belief is reported as not found")

	beliefs.appendErr = domain.Upstream(errStoreDown)
	_, err = svc.UpdateBelief(ctx, owner, b.ID, 0.4, nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, 0.4, beliefs.beliefs[b.ID].CurrentConfidence, "belief update is not rolled back")
	assert.Empty(t, beliefs.changes)
}

func TestBeliefService_BeliefStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _, owner := newTestBeliefService(nil)

	stats, err := svc.BeliefStats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.BeliefStats{}, stats)

	a, _ := svc.Create(ctx, owner, "A", 0.2, "")
	b, _ := svc.Create(ctx, owner, "B", 0.5, "")
	_, err = svc.UpdateBelief(ctx, owner, a.ID, 0.8, nil)
	require.NoError(t, err)
	_, err = svc.UpdateBelief(ctx, owner, b.ID, 0.6, nil)
	require.NoError(t, err)

	stats, err = svc.BeliefStats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBeliefs)
	assert.Equal(t, 1, stats.ViewsChanged)
	assert.InDelta(t, 0.35, stats.AverageConfidenceChange, 1e-9)
}

func TestBeliefService_EnsureForTopicExactMatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _, owner := newTestBeliefService(nil)

	first, created, err := svc.EnsureForTopic(ctx, owner, "Open Borders", 0.6)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.EnsureForTopic(ctx, owner, "open borders", 0.1)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 0.6, again.CurrentConfidence)
}

func TestBeliefService_EnsureForTopicUsesEmbeddings(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbedder{vectors: map[string][]float32{
		"Immigration policy":       {1, 0},
		"Immigration restrictions": {0.9, 0.43589},
		"Space exploration":        {0, 1},
	}}
	svc, beliefs, _, owner := newTestBeliefService(embedder)

	first, created, err := svc.EnsureForTopic(ctx, owner, "Immigration policy", 0.7)
	require.NoError(t, err)
	require.True(t, created)

	similar, created, err := svc.EnsureForTopic(ctx, owner, "Immigration restrictions", 0.3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, similar.ID)

	_, created, err = svc.EnsureForTopic(ctx, owner, "Space exploration", 0.3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 3, beliefs.similarCalls)
}

func TestBeliefService_EnsureForTopicEmbeddingFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	svc, beliefs, _, owner := newTestBeliefService(&mockEmbedder{err: errors.New("quota exceeded")})

	_, created, err := svc.EnsureForTopic(ctx, owner, "Taxes", 0.5)
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = svc.EnsureForTopic(ctx, owner, "TAXES", 0.5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, beliefs.similarCalls)
}
