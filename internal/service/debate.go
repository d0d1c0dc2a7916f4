package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/llm"
)

// FallbackDebateReply is stored in place of the persona's reply when it
// cannot be generated.
const FallbackDebateReply = "I'm sorry, I encountered an error generating a response. Let's continue the debate!"

// DebateService runs one-on-one debates against a persona.
type DebateService struct {
	debates   domain.DebateStore
	profiles  domain.ProfileStore
	tx        domain.Transactor
	generator domain.TextGenerator
	logger    *zap.Logger
	now       func() time.Time
}

func NewDebateService(ds domain.DebateStore, ps domain.ProfileStore, tx domain.Transactor, gen domain.TextGenerator, logger *zap.Logger) *DebateService {
	return &DebateService{
		debates:   ds,
		profiles:  ps,
		tx:        tx,
		generator: gen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *DebateService) Personas() []domain.Persona {
	return domain.Personas()
}

// Create opens a debate against personaID. An empty topic takes the
// persona's own topic.
func (s *DebateService) Create(ctx context.Context, owner uuid.UUID, personaID, topic string) (*domain.Debate, error) {
	persona, ok := domain.PersonaByID(personaID)
	if !ok {
		return nil, ErrPersonaNotFound
	}
	if topic = strings.TrimSpace(topic); topic == "" {
		topic = persona.Topic
	}

	d := &domain.Debate{
		OwnerID:       owner,
		PersonaID:     persona.ID,
		Topic:         topic,
		SteelManLevel: domain.DefaultSteelManLevel,
		Status:        domain.DebateActive,
	}
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		if err := s.debates.Create(ctx, d); err != nil {
			return err
		}
		return s.profiles.IncrementTotalDebates(ctx, owner)
	})
	if err != nil {
		return nil, orNotFound(err, ErrProfileNotFound)
	}
	return d, nil
}

func (s *DebateService) GetByID(ctx context.Context, owner, id uuid.UUID) (*domain.Debate, error) {
	d, err := s.debates.GetByID(ctx, id, owner)
	if err != nil {
		return nil, orNotFound(err, ErrDebateNotFound)
	}
	return d, nil
}

func (s *DebateService) Messages(ctx context.Context, owner, id uuid.UUID) ([]domain.DebateMessage, error) {
	if _, err := s.GetByID(ctx, owner, id); err != nil {
		return nil, err
	}
	return s.debates.ListMessages(ctx, id)
}

// Reply stores the user's message, generates the persona's answer and
// stores it too. Generation failures are answered with FallbackDebateReply.
func (s *DebateService) Reply(ctx context.Context, owner, debateID uuid.UUID, userText string) (*domain.DebateMessage, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, domain.Invalid("message is required")
	}
	d, err := s.GetByID(ctx, owner, debateID)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DebateEnded {
		return nil, ErrDebateEnded
	}
	persona, ok := domain.PersonaByID(d.PersonaID)
	if !ok {
		return nil, ErrPersonaNotFound
	}

	history, err := s.debates.ListMessages(ctx, debateID)
	if err != nil {
		return nil, err
	}
	userMsg := &domain.DebateMessage{DebateID: debateID, SenderType: domain.SenderUser, Content: userText}
	if err := s.debates.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	prompt := llm.DebateReplyPrompt(persona, d.Topic, d.SteelManLevel, history, userText)
	content, err := s.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(content) == "" {
		s.logger.Warn("debate reply generation failed, using fallback",
			zap.String("debate_id", debateID.String()),
			zap.Error(err))
		content = FallbackDebateReply
	}

	aiMsg := &domain.DebateMessage{DebateID: debateID, SenderType: domain.SenderAI, Content: strings.TrimSpace(content)}
	if err := s.debates.AppendMessage(ctx, aiMsg); err != nil {
		return nil, err
	}
	return aiMsg, nil
}

// FactCheck asks the generator to verify claim.
func (s *DebateService) FactCheck(ctx context.Context, claim string) (domain.Parsed[domain.FactCheck], error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return domain.Parsed[domain.FactCheck]{}, domain.Invalid("claim is required")
	}
	raw, err := s.generator.Generate(ctx, llm.FactCheckPrompt(claim))
	if err != nil {
		s.logger.Warn("fact check generation failed", zap.Error(err))
		return llm.FactCheckFallback(err), nil
	}
	parsed := llm.ParseFactCheck(raw)
	if parsed.Fallback {
		s.logger.Warn("unusable fact check, using fallback", zap.String("reason", parsed.Reason))
	}
	return parsed, nil
}

// AdjustSteelMan moves the debate's steel-man level by the user's sentiment.
func (s *DebateService) AdjustSteelMan(ctx context.Context, owner, debateID uuid.UUID, sentimentScore float64) (*domain.Debate, error) {
	if !domain.ValidUnit(sentimentScore) {
		return nil, domain.Invalid("sentiment score must be between 0 and 1")
	}
	d, err := s.GetByID(ctx, owner, debateID)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DebateEnded {
		return nil, ErrDebateEnded
	}
	d.SteelManLevel = domain.CalmDelta(sentimentScore, d.SteelManLevel, domain.SteelManSensitivity)
	if err := s.debates.UpdateSteelManLevel(ctx, debateID, d.SteelManLevel); err != nil {
		return nil, orNotFound(err, ErrDebateNotFound)
	}
	return d, nil
}

// End closes the debate and awards DebateXP to the owner.
func (s *DebateService) End(ctx context.Context, owner, debateID uuid.UUID) (*domain.Debate, error) {
	var d *domain.Debate
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		var err error
		d, err = s.debates.GetByID(ctx, debateID, owner)
		if err != nil {
			return orNotFound(err, ErrDebateNotFound)
		}
		endedAt := s.now().UTC()
		if err := s.debates.End(ctx, debateID, endedAt); err != nil {
			return err
		}
		d.Status = domain.DebateEnded
		d.EndedAt = &endedAt

		p, err := s.profiles.GetByID(ctx, owner)
		if err != nil {
			return orNotFound(err, ErrProfileNotFound)
		}
		xp := p.XP + domain.DebateXP
		return s.profiles.UpdateXP(ctx, owner, xp, domain.LevelForXP(xp))
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrDebateEnded
		}
		return nil, err
	}
	return d, nil
}
