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
	maxMessageLimit  = 200
	anonymousName    = "Anonymous"
	systemSenderName = "Ring"
)

// GroupDebateService manages multi-user debate rings.
type GroupDebateService struct {
	rings      domain.GroupDebateStore
	users      domain.UserStore
	tx         domain.Transactor
	subscriber domain.MessageSubscriber
	logger     *zap.Logger
	now        func() time.Time
}

// NewGroupDebateService creates the ring service. subscriber may be nil when
// realtime delivery is not running.
func NewGroupDebateService(rs domain.GroupDebateStore, us domain.UserStore, tx domain.Transactor, sub domain.MessageSubscriber, logger *zap.Logger) *GroupDebateService {
	return &GroupDebateService{
		rings:      rs,
		users:      us,
		tx:         tx,
		subscriber: sub,
		logger:     logger,
		now:        time.Now,
	}
}

// RingOptions are the optional settings of a new ring.
type RingOptions struct {
	MaxParticipants int        `json:"max_participants"`
	IsAnonymous     bool       `json:"is_anonymous"`
	IsFeatured      bool       `json:"is_featured"`
	IntensityLevel  int        `json:"intensity_level"`
	Category        string     `json:"category"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
}

// ListActive returns active rings, newest first.
func (s *GroupDebateService) ListActive(ctx context.Context, includeAnonymous bool) ([]domain.GroupDebate, error) {
	return s.rings.ListActive(ctx, includeAnonymous)
}

// Featured returns the newest active featured ring.
func (s *GroupDebateService) Featured(ctx context.Context) (*domain.GroupDebate, error) {
	featured, err := s.rings.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}
	if len(featured) == 0 {
		return nil, ErrRingNotFound
	}
	return &featured[0], nil
}

func (s *GroupDebateService) Get(ctx context.Context, id uuid.UUID) (*domain.GroupDebate, error) {
	g, err := s.rings.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, ErrRingNotFound)
	}
	return g, nil
}

func (s *GroupDebateService) Create(ctx context.Context, owner uuid.UUID, topic string, opts RingOptions) (*domain.GroupDebate, error) {
	return s.create(ctx, owner, nil, topic, opts)
}

// create stores a ring; communityID scopes it to one community and is
// checked for membership by the caller.
func (s *GroupDebateService) create(ctx context.Context, owner uuid.UUID, communityID *uuid.UUID, topic string, opts RingOptions) (*domain.GroupDebate, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.Invalid("topic is required")
	}
	if opts.MaxParticipants == 0 {
		opts.MaxParticipants = domain.DefaultMaxParticipants
	}
	if err := s.validateSettings(opts.MaxParticipants, opts.IntensityLevel, opts.EndsAt); err != nil {
		return nil, err
	}

	g := &domain.GroupDebate{
		Topic:           topic,
		CreatedBy:       owner,
		Status:          domain.GroupDebateActive,
		MaxParticipants: opts.MaxParticipants,
		IsAnonymous:     opts.IsAnonymous,
		IsFeatured:      opts.IsFeatured,
		IntensityLevel:  opts.IntensityLevel,
		Category:        strings.TrimSpace(opts.Category),
		EndsAt:          opts.EndsAt,
		CommunityID:     communityID,
	}
	if err := s.rings.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GroupDebateService) validateSettings(maxParticipants, intensity int, endsAt *time.Time) error {
	if maxParticipants < 2 {
		return domain.Invalid("a ring needs room for at least 2 participants")
	}
	if intensity < 0 || intensity > 10 {
		return domain.Invalid("intensity level must be between 0 and 10")
	}
	if endsAt != nil && !endsAt.After(s.now()) {
		return domain.Invalid("ends_at must be in the future")
	}
	return nil
}

// Update changes the ring's settings. Only its creator may update it, and
// capacity cannot drop below the current participant count.
func (s *GroupDebateService) Update(ctx context.Context, ringID, actor uuid.UUID, upd domain.GroupDebateUpdate) (*domain.GroupDebate, error) {
	if upd.Empty() {
		return nil, domain.Invalid("no fields to update")
	}
	var g *domain.GroupDebate
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if g, err = s.rings.GetByIDForUpdate(ctx, ringID); err != nil {
			return orNotFound(err, ErrRingNotFound)
		}
		if g.CreatedBy != actor {
			return ErrNotRingCreator
		}
		if upd.Status != nil && !domain.ValidGroupDebateStatus(*upd.Status) {
			return domain.Invalid("unknown ring status %q", *upd.Status)
		}
		if upd.Topic != nil {
			topic := strings.TrimSpace(*upd.Topic)
			if topic == "" {
				return domain.Invalid("topic is required")
			}
			upd.Topic = &topic
		}
		if upd.Category != nil {
			category := strings.TrimSpace(*upd.Category)
			upd.Category = &category
		}
		upd.Apply(g)
		if err := s.validateSettings(g.MaxParticipants, g.IntensityLevel, upd.EndsAt); err != nil {
			return err
		}
		if g.MaxParticipants < g.ParticipantCount {
			return domain.Invalid("max_participants cannot be below the %d active participants", g.ParticipantCount)
		}
		return s.rings.Update(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("ring updated", zap.String("ring_id", ringID.String()))
	return g, nil
}

// Join adds owner to the ring. Rejoining after leaving is allowed; joining
// a full ring is not. The ring row stays locked from the capacity check to
// the insert so concurrent joins cannot overfill it.
func (s *GroupDebateService) Join(ctx context.Context, ringID, owner uuid.UUID, maskID *string) (*domain.GroupParticipant, error) {
	p := &domain.GroupParticipant{DebateID: ringID, UserID: owner, AnonymousMaskID: maskID}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		g, err := s.rings.GetByIDForUpdate(ctx, ringID)
		if err != nil {
			return orNotFound(err, ErrRingNotFound)
		}
		if g.Status != domain.GroupDebateActive {
			return ErrRingClosed
		}
		already, err := s.rings.IsActiveParticipant(ctx, ringID, owner)
		if err != nil {
			return err
		}
		if already {
			return s.rings.Join(ctx, p)
		}
		n, err := s.rings.CountActiveParticipants(ctx, ringID)
		if err != nil {
			return err
		}
		if n >= g.MaxParticipants {
			return ErrRingFull
		}
		if err := s.rings.Join(ctx, p); err != nil {
			return err
		}
		return s.announce(ctx, g, owner, maskID, "joined")
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Leave marks owner as gone from the ring and tells the other participants.
func (s *GroupDebateService) Leave(ctx context.Context, ringID, owner uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		g, err := s.rings.GetByID(ctx, ringID)
		if err != nil {
			return orNotFound(err, ErrRingNotFound)
		}
		if err := s.rings.Leave(ctx, ringID, owner, s.now().UTC()); err != nil {
			return orNotFound(err, ErrNotParticipant)
		}
		return s.announce(ctx, g, owner, nil, "left")
	})
}

// announce posts a system message about a participant change, which reaches
// stream subscribers like any other message. Anonymous rings never reveal
// usernames.
func (s *GroupDebateService) announce(ctx context.Context, g *domain.GroupDebate, userID uuid.UUID, maskID *string, verb string) error {
	name := anonymousName
	switch {
	case g.IsAnonymous && maskID != nil && strings.TrimSpace(*maskID) != "":
		name = strings.TrimSpace(*maskID)
	case !g.IsAnonymous:
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return orNotFound(err, ErrUserNotFound)
		}
		name = u.Username
	}
	return s.rings.AppendMessage(ctx, &domain.GroupMessage{
		DebateID:   g.ID,
		SenderName: systemSenderName,
		SenderType: domain.SenderSystem,
		Content:    name + " " + verb + " the ring",
	})
}

// Messages returns the ring's latest messages in chronological order.
func (s *GroupDebateService) Messages(ctx context.Context, ringID uuid.UUID, limit int) ([]domain.GroupMessage, error) {
	if limit <= 0 {
		limit = domain.DefaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	if _, err := s.Get(ctx, ringID); err != nil {
		return nil, err
	}
	return s.rings.ListMessages(ctx, ringID, limit)
}

// Send posts a message from owner to the ring. Only active participants
// may post.
func (s *GroupDebateService) Send(ctx context.Context, ringID, owner uuid.UUID, content string, replyTo *uuid.UUID) (*domain.GroupMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Invalid("content is required")
	}
	g, err := s.Get(ctx, ringID)
	if err != nil {
		return nil, err
	}
	if g.Status != domain.GroupDebateActive {
		return nil, ErrRingClosed
	}
	ok, err := s.rings.IsActiveParticipant(ctx, ringID, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	u, err := s.users.GetByID(ctx, owner)
	if err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}

	m := &domain.GroupMessage{
		DebateID:   ringID,
		UserID:     &owner,
		SenderName: u.Username,
		SenderType: domain.SenderUser,
		Content:    content,
		ReplyToID:  replyTo,
	}
	if err := s.rings.AppendMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Subscribe streams new messages of the ring until cancel is called.
func (s *GroupDebateService) Subscribe(ctx context.Context, ringID uuid.UUID) (<-chan domain.GroupMessage, func(), error) {
	if s.subscriber == nil {
		return nil, nil, domain.Upstream(errRealtimeDisabled)
	}
	if _, err := s.Get(ctx, ringID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.subscriber.Subscribe(ringID)
	return ch, cancel, nil
}
