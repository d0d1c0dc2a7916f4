package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*User, error)
}

type ProfileStore interface {
	Create(ctx context.Context, p *UserProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*UserProfile, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	UpdateCalibration(ctx context.Context, id uuid.UUID, brier float64, rank CalibrationRank) error
	UpdateCalm(ctx context.Context, id uuid.UUID, calm float64, totalSessions int) error
	UpdateViewsChanged(ctx context.Context, id uuid.UUID, viewsChanged int) error
	UpdateXP(ctx context.Context, id uuid.UUID, xp, level int) error
	IncrementTotalDebates(ctx context.Context, id uuid.UUID) error
	IncrementTotalPredictions(ctx context.Context, id uuid.UUID) error
}

type BeliefStore interface {
	Create(ctx context.Context, b *Belief) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Belief, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Belief, error)
	// FindByTopic matches the owner's belief topic case-insensitively.
	FindByTopic(ctx context.Context, ownerID uuid.UUID, topic string) (*Belief, error)
	// FindSimilarTopic returns the owner's belief whose topic embedding is
	// closest to embedding with cosine similarity at least threshold.
	FindSimilarTopic(ctx context.Context, ownerID uuid.UUID, embedding []float32, threshold float32) (*Belief, error)
	UpdateConfidence(ctx context.Context, b *Belief) error
	AppendChange(ctx context.Context, c *BeliefChange) error
	ListChanges(ctx context.Context, ownerID uuid.UUID) ([]BeliefChange, error)
}

type PredictionStore interface {
	Create(ctx context.Context, p *Prediction) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Prediction, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Prediction, error)
	ListOpen(ctx context.Context, limit int) ([]Prediction, error)
	// UpdateProbability only touches unresolved predictions and returns
	// ErrAlreadyResolved otherwise.
	UpdateProbability(ctx context.Context, id, ownerID uuid.UUID, probability float64) error
	// Resolve is a compare-and-set on resolved = false. It returns
	// ErrAlreadyResolved when the prediction was resolved concurrently.
	Resolve(ctx context.Context, id, ownerID uuid.UUID, outcome bool, brier float64, resolvedAt time.Time) error
	ResolvedBrierScores(ctx context.Context, ownerID uuid.UUID) ([]float64, error)
	// ListScoped returns predictions shared into the user's communities and,
	// when includeGlobal is set, those shared with no community.
	ListScoped(ctx context.Context, userID uuid.UUID, includeGlobal bool, limit int) ([]Prediction, error)
}

type DeEscalationStore interface {
	CreateSession(ctx context.Context, s *DeEscalationSession) error
	GetSession(ctx context.Context, id, ownerID uuid.UUID) (*DeEscalationSession, error)
	// UpdateProgress persists the running calm score and turn counters of an
	// open session. It returns ErrSessionCompleted for completed sessions.
	UpdateProgress(ctx context.Context, s *DeEscalationSession) error
	// Complete is a compare-and-set on completed = false.
	Complete(ctx context.Context, s *DeEscalationSession) error
	AppendTurn(ctx context.Context, t *DeEscalationTurn) error
	ListTurns(ctx context.Context, sessionID uuid.UUID) ([]DeEscalationTurn, error)
	ListCompleted(ctx context.Context, ownerID uuid.UUID) ([]DeEscalationSession, error)
}

type BiasStore interface {
	Create(ctx context.Context, b *CognitiveBias) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]CognitiveBias, error)
}

type DebateStore interface {
	Create(ctx context.Context, d *Debate) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*Debate, error)
	UpdateSteelManLevel(ctx context.Context, id uuid.UUID, level float64) error
	End(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	AppendMessage(ctx context.Context, m *DebateMessage) error
	ListMessages(ctx context.Context, debateID uuid.UUID) ([]DebateMessage, error)
}

type GroupDebateStore interface {
	Create(ctx context.Context, g *GroupDebate) error
	GetByID(ctx context.Context, id uuid.UUID) (*GroupDebate, error)
	// GetByIDForUpdate locks the ring row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*GroupDebate, error)
	ListActive(ctx context.Context, includeAnonymous bool) ([]GroupDebate, error)
	ListFeatured(ctx context.Context) ([]GroupDebate, error)
	// ListScoped is PredictionStore.ListScoped for active rings.
	ListScoped(ctx context.Context, userID uuid.UUID, includeGlobal bool) ([]GroupDebate, error)
	// Update writes the mutable ring fields of g.
	Update(ctx context.Context, g *GroupDebate) error
	CountActiveParticipants(ctx context.Context, debateID uuid.UUID) (int, error)
	IsActiveParticipant(ctx context.Context, debateID, userID uuid.UUID) (bool, error)
	// Join inserts the participant or, on rejoin, clears left_at. An active
	// participant keeps the original joined_at.
	Join(ctx context.Context, p *GroupParticipant) error
	Leave(ctx context.Context, debateID, userID uuid.UUID, leftAt time.Time) error
	// AppendMessage inserts the message and publishes it to realtime subscribers.
	AppendMessage(ctx context.Context, m *GroupMessage) error
	ListMessages(ctx context.Context, debateID uuid.UUID, limit int) ([]GroupMessage, error)
}

type SkillStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CognitiveSkill, error)
	// Upsert inserts the skill or overwrites the level of an existing one.
	Upsert(ctx context.Context, sk *CognitiveSkill) error
	// EnsureDefaults inserts the missing DefaultSkills without touching
	// existing levels.
	EnsureDefaults(ctx context.Context, userID uuid.UUID) error
}

type AchievementStore interface {
	ListAll(ctx context.Context) ([]Achievement, error)
	GetByCode(ctx context.Context, code string) (*Achievement, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]UserAchievement, error)
	// Unlock returns ErrConflict when the user already holds the achievement.
	Unlock(ctx context.Context, ua *UserAchievement) error
}

type CommunityStore interface {
	Create(ctx context.Context, c *Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*Community, error)
	// GetByIDForUpdate locks the community row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Community, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]Community, error)
	ListUnlocked(ctx context.Context) ([]Community, error)
	Update(ctx context.Context, c *Community) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, m *CommunityMember) error
	GetMember(ctx context.Context, communityID, userID uuid.UUID) (*CommunityMember, error)
	ListMembers(ctx context.Context, communityID uuid.UUID) ([]CommunityMember, error)
	CountMembers(ctx context.Context, communityID uuid.UUID) (int, error)
	UpdateMemberRole(ctx context.Context, communityID, userID uuid.UUID, role CommunityRole) error
	RemoveMember(ctx context.Context, communityID, userID uuid.UUID) error

	CreateInvite(ctx context.Context, inv *CommunityInvite) error
	GetInvite(ctx context.Context, communityID uuid.UUID, code string) (*CommunityInvite, error)
	ListInvites(ctx context.Context, communityID uuid.UUID) ([]CommunityInvite, error)
	IncrementInviteUses(ctx context.Context, id uuid.UUID) error
}

// Transactor runs fn in a transaction. Stores called with the ctx passed to
// fn join it. InOwnerTx additionally holds the row lock on the owner's profile.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	InOwnerTx(ctx context.Context, ownerID uuid.UUID, fn func(ctx context.Context) error) error
}

// TextGenerator is the text-generation collaborator.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MessageSubscriber delivers newly inserted group messages for one debate.
// The returned cancel func releases the subscription and closes the channel.
type MessageSubscriber interface {
	Subscribe(debateID uuid.UUID) (<-chan GroupMessage, func())
}
