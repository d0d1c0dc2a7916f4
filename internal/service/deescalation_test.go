package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/llm"
)

func newTestDeEscalationService() (*DeEscalationService, *mockDeEscalationStore, *mockProfileStore, *llm.MockGenerator, uuid.UUID) {
	sessions := newMockDeEscalationStore()
	profiles := newMockProfileStore()
	gen := llm.NewMockGenerator()
	owner := uuid.New()
	profiles.add(owner)
	svc := NewDeEscalationService(sessions, profiles, &mockTx{profiles: profiles}, gen, zap.NewNop())
	return svc, sessions, profiles, gen, owner
}

func TestDeEscalationService_StartSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, owner := newTestDeEscalationService()

	s, err := svc.StartSession(ctx, owner, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.InitialCalmScore)
	assert.Equal(t, 0.5, s.CurrentCalmScore)
	assert.Equal(t, "general", s.ScenarioType)

	bad := 1.5
	_, err = svc.StartSession(ctx, owner, "politics", &bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeEscalationService_RecordTurnUsesGeneratedSentiment(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _, gen, owner := newTestDeEscalationService()
	s, err := svc.StartSession(ctx, owner, "politics", nil)
	require.NoError(t, err)

	gen.Response = "```json\n{\"score\": 0.9, \"calm_words\": [\"respect\"], \"aggressive_words\": []}\n```"
	res, err := svc.RecordTurn(ctx, owner, s.ID, "I respect your view", "You're an idiot")
	require.NoError(t, err)

	assert.False(t, res.Sentiment.Fallback)
	assert.Equal(t, 0.9, res.Sentiment.Value.Score)
	assert.InDelta(t, 0.62, res.Session.CurrentCalmScore, 1e-9)
	assert.Equal(t, 1, res.Session.TurnCount)
	assert.Equal(t, 1, res.Session.PositiveTurns)
	assert.Equal(t, 0, res.Session.NegativeTurns)

	require.Len(t, sessions.turns, 1)
	assert.Equal(t, "You're an idiot", sessions.turns[0].PromptText)
	assert.InDelta(t, 0.62, sessions.sessions[s.ID].CurrentCalmScore, 1e-9)
}

func TestDeEscalationService_RecordTurnFallsBackToKeywords(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"generator error", "", errStoreDown},
		{"malformed json", "I think they sound calm", nil},
		{"score out of range", `{"score": 7}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _, _, gen, owner := newTestDeEscalationService()
			gen.Response, gen.Err = tt.response, tt.err
			s, err := svc.StartSession(ctx, owner, "politics", nil)
			require.NoError(t, err)

			res, err := svc.RecordTurn(ctx, owner, s.ID, "I understand your point, thanks", "")
			require.NoError(t, err)
			assert.True(t, res.Sentiment.Fallback)
			assert.NotEmpty(t, res.Sentiment.Reason)
			assert.InDelta(t, 0.8, res.Sentiment.Value.Score, 1e-9)
			assert.ElementsMatch(t, []string{"understand", "point", "thanks"}, res.Sentiment.Value.CalmWords)
			assert.InDelta(t, 0.59, res.Session.CurrentCalmScore, 1e-9)
			assert.Equal(t, 1, res.Session.PositiveTurns)
		})
	}
}

func TestDeEscalationService_RecordTurnNegative(t *testing.T) {
	ctx := context.Background()
	svc, _, _, gen, owner := newTestDeEscalationService()
	gen.Response = `{"score": 0.1, "calm_words": [], "aggressive_words": ["stupid"]}`
	s, _ := svc.StartSession(ctx, owner, "politics", nil)

	res, err := svc.RecordTurn(ctx, owner, s.ID, "That's stupid", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Session.NegativeTurns)
	assert.InDelta(t, 0.38, res.Session.CurrentCalmScore, 1e-9)
}

func TestDeEscalationService_RecordTurnRejections(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, owner := newTestDeEscalationService()
	s, _ := svc.StartSession(ctx, owner, "politics", nil)

	_, err := svc.RecordTurn(ctx, owner, s.ID, "   ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.RecordTurn(ctx, owner, uuid.New(), "hello", "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.CompleteSession(ctx, owner, s.ID)
	require.NoError(t, err)
	_, err = svc.RecordTurn(ctx, owner, s.ID, "hello", "")
	assert.ErrorIs(t, err, domain.ErrSessionCompleted)
}

func TestDeEscalationService_CompleteSessionUpdatesProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, profiles, gen, owner := newTestDeEscalationService()
	gen.Response = `{"score": 1.0, "calm_words": ["agree"], "aggressive_words": []}`

	s, _ := svc.StartSession(ctx, owner, "politics", nil)
	_, err := svc.RecordTurn(ctx, owner, s.ID, "I agree", "")
	require.NoError(t, err)

	done, err := svc.CompleteSession(ctx, owner, s.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.FinalCalmScore)
	assert.InDelta(t, 0.65, *done.FinalCalmScore, 1e-9)
	assert.InDelta(t, 0.15, done.Improvement(), 1e-9)

	profile := profiles.profiles[owner]
	assert.InDelta(t, 0.65, profile.CalmScore, 1e-9)
	assert.Equal(t, 1, profile.TotalTrainingSessions)

	_, err = svc.CompleteSession(ctx, owner, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionCompleted)
	assert.Equal(t, 1, profiles.profiles[owner].TotalTrainingSessions)
}

func TestDeEscalationService_TrollReply(t *testing.T) {
	ctx := context.Background()
	svc, _, _, gen, owner := newTestDeEscalationService()
	s, _ := svc.StartSession(ctx, owner, "climate", nil)

	gen.Response = "  Oh please, everyone knows that's nonsense.  "
	reply, err := svc.TrollReply(ctx, owner, s.ID, "I see your point")
	require.NoError(t, err)
	assert.False(t, reply.Fallback)
	assert.Equal(t, "Oh please, everyone knows that's nonsense.", reply.Value)
	require.Len(t, gen.Prompts, 1)
	assert.Contains(t, gen.Prompts[0], "climate")

	gen.Err = errStoreDown
	reply, err = svc.TrollReply(ctx, owner, s.ID, "I see your point")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Equal(t, FallbackTrollLine, reply.Value)
}
