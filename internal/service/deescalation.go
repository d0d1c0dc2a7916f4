package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/llm"
)

// FallbackTrollLine is used when the troll reply cannot be generated.
const FallbackTrollLine = "You're clearly not getting this. How can you be so wrong about something so obvious?"

const defaultScenario = "general"

type DeEscalationService struct {
	sessions  domain.DeEscalationStore
	profiles  domain.ProfileStore
	tx        domain.Transactor
	generator domain.TextGenerator
	logger    *zap.Logger
	now       func() time.Time
}

func NewDeEscalationService(ss domain.DeEscalationStore, ps domain.ProfileStore, tx domain.Transactor, gen domain.TextGenerator, logger *zap.Logger) *DeEscalationService {
	return &DeEscalationService{
		sessions:  ss,
		profiles:  ps,
		tx:        tx,
		generator: gen,
		logger:    logger,
		now:       time.Now,
	}
}

// TurnResult is the outcome of one recorded turn.
type TurnResult struct {
	Sentiment domain.Parsed[domain.Sentiment] `json:"sentiment"`
	Session   *domain.DeEscalationSession     `json:"session"`
}

// StartSession opens a training session. A nil initialCalm starts at the
// baseline calm score.
func (s *DeEscalationService) StartSession(ctx context.Context, owner uuid.UUID, scenarioType string, initialCalm *float64) (*domain.DeEscalationSession, error) {
	calm := domain.BaselineCalmScore
	if initialCalm != nil {
		if !domain.ValidUnit(*initialCalm) {
			return nil, domain.Invalid("initial calm score must be between 0 and 1")
		}
		calm = *initialCalm
	}
	if scenarioType = strings.TrimSpace(scenarioType); scenarioType == "" {
		scenarioType = defaultScenario
	}

	session := &domain.DeEscalationSession{
		OwnerID:          owner,
		ScenarioType:     scenarioType,
		InitialCalmScore: calm,
		CurrentCalmScore: calm,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DeEscalationService) GetSession(ctx context.Context, owner, id uuid.UUID) (*domain.DeEscalationSession, error) {
	session, err := s.sessions.GetSession(ctx, id, owner)
	if err != nil {
		return nil, orNotFound(err, ErrSessionNotFound)
	}
	return session, nil
}

// Turns returns the session's turns in the order they were recorded.
func (s *DeEscalationService) Turns(ctx context.Context, owner, id uuid.UUID) ([]domain.DeEscalationTurn, error) {
	if _, err := s.GetSession(ctx, owner, id); err != nil {
		return nil, err
	}
	return s.sessions.ListTurns(ctx, id)
}

// AnalyzeSentiment scores text through the generator, falling back to the
// keyword heuristic when the generator fails or returns unusable output.
func (s *DeEscalationService) AnalyzeSentiment(ctx context.Context, text string) domain.Parsed[domain.Sentiment] {
	raw, err := s.generator.Generate(ctx, llm.SentimentPrompt(text))
	if err != nil {
		s.logger.Warn("sentiment generation failed, using keyword fallback", zap.Error(err))
		return llm.SentimentFallback(text, err)
	}
	parsed := llm.ParseSentiment(raw, text)
	if parsed.Fallback {
		s.logger.Warn("unusable sentiment analysis, using keyword fallback", zap.String("reason", parsed.Reason))
	}
	return parsed
}

// RecordTurn analyzes the user's reply and folds it into the session.
func (s *DeEscalationService) RecordTurn(ctx context.Context, owner, sessionID uuid.UUID, userText, promptText string) (*TurnResult, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, domain.Invalid("text is required")
	}

	session, err := s.GetSession(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, domain.ErrSessionCompleted
	}

	sentiment := s.AnalyzeSentiment(ctx, userText)

	err = s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		// Re-read under the lock so concurrent turns do not overwrite each other.
		current, err := s.sessions.GetSession(ctx, sessionID, owner)
		if err != nil {
			return err
		}
		if current.Completed {
			return domain.ErrSessionCompleted
		}
		turn := &domain.DeEscalationTurn{
			SessionID:  sessionID,
			UserText:   userText,
			PromptText: promptText,
			Sentiment:  sentiment.Value,
		}
		if err := s.sessions.AppendTurn(ctx, turn); err != nil {
			return err
		}
		current.ApplyTurn(sentiment.Value)
		if err := s.sessions.UpdateProgress(ctx, current); err != nil {
			return err
		}
		session = current
		return nil
	})
	if err != nil {
		return nil, orNotFound(err, ErrSessionNotFound)
	}

	s.logger.Debug("de-escalation turn recorded",
		zap.String("session_id", sessionID.String()),
		zap.Float64("sentiment", sentiment.Value.Score),
		zap.Float64("calm", session.CurrentCalmScore),
		zap.Bool("fallback", sentiment.Fallback))
	return &TurnResult{Sentiment: sentiment, Session: session}, nil
}

// CompleteSession closes the session at its current calm score and refreshes
// the owner's calm rollup.
func (s *DeEscalationService) CompleteSession(ctx context.Context, owner, sessionID uuid.UUID) (*domain.DeEscalationSession, error) {
	var session *domain.DeEscalationSession
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		current, err := s.sessions.GetSession(ctx, sessionID, owner)
		if err != nil {
			return err
		}
		if current.Completed {
			return domain.ErrSessionCompleted
		}
		final := current.CurrentCalmScore
		completedAt := s.now().UTC()
		current.FinalCalmScore = &final
		current.Completed = true
		current.CompletedAt = &completedAt
		if err := s.sessions.Complete(ctx, current); err != nil {
			return err
		}
		if _, err := s.RecomputeCalm(ctx, owner); err != nil {
			return err
		}
		session = current
		return nil
	})
	if err != nil {
		return nil, orNotFound(err, ErrSessionNotFound)
	}

	s.logger.Info("de-escalation session completed",
		zap.String("session_id", sessionID.String()),
		zap.Float64("improvement", session.Improvement()))
	return session, nil
}

// RecomputeCalm rewrites the profile's calm score and training count from
// the owner's completed sessions.
func (s *DeEscalationService) RecomputeCalm(ctx context.Context, owner uuid.UUID) (float64, error) {
	var calm float64
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		completed, err := s.sessions.ListCompleted(ctx, owner)
		if err != nil {
			return err
		}
		calm = domain.ProfileCalmScore(completed)
		return s.profiles.UpdateCalm(ctx, owner, calm, len(completed))
	})
	if err != nil {
		return 0, orNotFound(err, ErrProfileNotFound)
	}
	return calm, nil
}

// TrollReply generates the simulated troll's next line for the session.
func (s *DeEscalationService) TrollReply(ctx context.Context, owner, sessionID uuid.UUID, userText string) (domain.Parsed[string], error) {
	session, err := s.GetSession(ctx, owner, sessionID)
	if err != nil {
		return domain.Parsed[string]{}, err
	}
	if session.Completed {
		return domain.Parsed[string]{}, domain.ErrSessionCompleted
	}
	turns, err := s.sessions.ListTurns(ctx, sessionID)
	if err != nil {
		return domain.Parsed[string]{}, err
	}

	prompt := llm.TrollPrompt(session.ScenarioType, session.CurrentCalmScore, turns, userText)
	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("troll generation failed", zap.Error(err))
		return domain.FallbackValue(FallbackTrollLine, err.Error()), nil
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		return domain.FallbackValue(FallbackTrollLine, "empty reply"), nil
	}
	return domain.ParsedValue(reply), nil
}
