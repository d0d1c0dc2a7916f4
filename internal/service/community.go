package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/store"
)

const (
	codeAlphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeAttempts      = 3
	maxInviteDays     = 365
	maxCommunityName  = 80
	maxScopedFeedSize = 100
)

// CommunityService manages communities, their members and invites, and the
// predictions and rings scoped to them.
type CommunityService struct {
	communities domain.CommunityStore
	predictions *PredictionService
	rings       *GroupDebateService
	tx          domain.Transactor
	logger      *zap.Logger
	now         func() time.Time
}

func NewCommunityService(cs domain.CommunityStore, predictions *PredictionService, rings *GroupDebateService, tx domain.Transactor, logger *zap.Logger) *CommunityService {
	return &CommunityService{
		communities: cs,
		predictions: predictions,
		rings:       rings,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

// Create makes a community with owner as its creator member.
func (s *CommunityService) Create(ctx context.Context, owner uuid.UUID, name, description string, isLocked bool, maxMembers int) (*domain.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxCommunityName {
		return nil, domain.Invalid("name must be 1-%d characters", maxCommunityName)
	}
	if maxMembers == 0 {
		maxMembers = domain.DefaultMaxMembers
	}
	if maxMembers < 1 {
		return nil, domain.Invalid("max_members must be at least 1")
	}

	c := &domain.Community{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatorID:   owner,
		IsLocked:    isLocked,
		MaxMembers:  maxMembers,
		UserRole:    domain.RoleCreator,
	}
	err := s.withFreshCode(domain.CommunityCodeLength, func(code string) error {
		c.InviteCode = code
		return s.tx.InTx(ctx, func(ctx context.Context) error {
			if err := s.communities.Create(ctx, c); err != nil {
				return err
			}
			return s.communities.AddMember(ctx, &domain.CommunityMember{
				CommunityID: c.ID,
				UserID:      owner,
				Role:        domain.RoleCreator,
			})
		})
	})
	if err != nil {
		return nil, err
	}
	c.MemberCount = 1

	s.logger.Info("community created",
		zap.String("community_id", c.ID.String()),
		zap.Bool("locked", isLocked))
	return c, nil
}

// Get returns the community with the viewer's role. The join code is only
// shown to managers.
func (s *CommunityService) Get(ctx context.Context, id, viewer uuid.UUID) (*domain.Community, error) {
	c, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, ErrCommunityNotFound)
	}
	m, err := s.communities.GetMember(ctx, id, viewer)
	switch {
	case err == nil:
		c.UserRole = m.Role
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	redactCode(c)
	return c, nil
}

// Mine lists the communities owner belongs to.
func (s *CommunityService) Mine(ctx context.Context, owner uuid.UUID) ([]domain.Community, error) {
	communities, err := s.communities.ListByMember(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range communities {
		redactCode(&communities[i])
	}
	return communities, nil
}

// Available lists the communities anyone may join without an invite.
func (s *CommunityService) Available(ctx context.Context) ([]domain.Community, error) {
	communities, err := s.communities.ListUnlocked(ctx)
	if err != nil {
		return nil, err
	}
	for i := range communities {
		communities[i].InviteCode = ""
	}
	return communities, nil
}

// Join adds owner as a member. A locked community needs code, which may be
// the community's own join code or a live invite; a supplied invite is
// checked and consumed even when the community is open.
func (s *CommunityService) Join(ctx context.Context, id, owner uuid.UUID, code string) (*domain.CommunityMember, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	m := &domain.CommunityMember{CommunityID: id, UserID: owner, Role: domain.RoleMember}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.communities.GetByIDForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err, ErrCommunityNotFound)
		}
		if _, err := s.communities.GetMember(ctx, id, owner); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		switch {
		case code != "" && code == c.InviteCode:
		case code != "":
			if err := s.consumeInvite(ctx, id, code); err != nil {
				return err
			}
		case c.IsLocked:
			return ErrInviteRequired
		}

		n, err := s.communities.CountMembers(ctx, id)
		if err != nil {
			return err
		}
		if n >= c.MaxMembers {
			return ErrCommunityFull
		}
		return s.communities.AddMember(ctx, m)
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	return m, nil
}

func (s *CommunityService) consumeInvite(ctx context.Context, id uuid.UUID, code string) error {
	inv, err := s.communities.GetInvite(ctx, id, code)
	if err != nil {
		return orNotFound(err, ErrInviteRequired)
	}
	if !inv.Usable(s.now()) {
		return ErrInviteExpired
	}
	return s.communities.IncrementInviteUses(ctx, inv.ID)
}

// Leave removes owner from the community. The creator has to delete the
// community instead.
func (s *CommunityService) Leave(ctx context.Context, id, owner uuid.UUID) error {
	m, err := s.member(ctx, id, owner)
	if err != nil {
		return err
	}
	if m.Role == domain.RoleCreator {
		return ErrCreatorCannotLeave
	}
	return orNotFound(s.communities.RemoveMember(ctx, id, owner), ErrNotMember)
}

// Update edits the community. Managers only; max_members cannot drop below
// the current member count.
func (s *CommunityService) Update(ctx context.Context, id, actor uuid.UUID, upd domain.CommunityUpdate) (*domain.Community, error) {
	if upd.Empty() {
		return nil, domain.Invalid("no fields to update")
	}
	var c *domain.Community
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if c, err = s.communities.GetByIDForUpdate(ctx, id); err != nil {
			return orNotFound(err, ErrCommunityNotFound)
		}
		m, err := s.requireManager(ctx, id, actor)
		if err != nil {
			return err
		}
		c.UserRole = m.Role

		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" || len(name) > maxCommunityName {
				return domain.Invalid("name must be 1-%d characters", maxCommunityName)
			}
			c.Name = name
		}
		if upd.Description != nil {
			c.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.IsLocked != nil {
			c.IsLocked = *upd.IsLocked
		}
		if upd.MaxMembers != nil {
			if *upd.MaxMembers < 1 || *upd.MaxMembers < c.MemberCount {
				return domain.Invalid("max_members cannot be below the %d current members", c.MemberCount)
			}
			c.MaxMembers = *upd.MaxMembers
		}
		return orNotFound(s.communities.Update(ctx, c), ErrCommunityNotFound)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the community. Only its creator may do so; scoped
// predictions and rings fall back to global.
func (s *CommunityService) Delete(ctx context.Context, id, actor uuid.UUID) error {
	c, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return orNotFound(err, ErrCommunityNotFound)
	}
	if c.CreatorID != actor {
		return ErrNotCommunityAdmin
	}
	if err := s.communities.Delete(ctx, id); err != nil {
		return orNotFound(err, ErrCommunityNotFound)
	}
	s.logger.Info("community deleted", zap.String("community_id", id.String()))
	return nil
}

// Members lists the members. Locked communities only show them to members.
func (s *CommunityService) Members(ctx context.Context, id, viewer uuid.UUID) ([]domain.CommunityMember, error) {
	c, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, ErrCommunityNotFound)
	}
	if c.IsLocked {
		if _, err := s.member(ctx, id, viewer); err != nil {
			return nil, err
		}
	}
	return s.communities.ListMembers(ctx, id)
}

// UpdateMemberRole promotes or demotes a member. The creator role cannot be
// granted or taken away, and only the creator may change an admin.
func (s *CommunityService) UpdateMemberRole(ctx context.Context, id, actor, target uuid.UUID, role domain.CommunityRole) error {
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return domain.Invalid("role must be %q or %q", domain.RoleAdmin, domain.RoleMember)
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		by, subject, err := s.managerAndTarget(ctx, id, actor, target)
		if err != nil {
			return err
		}
		if subject.Role == domain.RoleAdmin && by.Role != domain.RoleCreator {
			return ErrNotCommunityAdmin
		}
		return orNotFound(s.communities.UpdateMemberRole(ctx, id, target, role), ErrNotMember)
	})
}

// RemoveMember removes target on behalf of a manager. Admins can only
// remove plain members.
func (s *CommunityService) RemoveMember(ctx context.Context, id, actor, target uuid.UUID) error {
	if actor == target {
		return s.Leave(ctx, id, actor)
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		by, subject, err := s.managerAndTarget(ctx, id, actor, target)
		if err != nil {
			return err
		}
		if subject.Role == domain.RoleAdmin && by.Role != domain.RoleCreator {
			return ErrNotCommunityAdmin
		}
		return orNotFound(s.communities.RemoveMember(ctx, id, target), ErrNotMember)
	})
}

// CreateInvite issues an invite code valid for expiresInDays (default 7)
// and at most maxUses joins when set.
func (s *CommunityService) CreateInvite(ctx context.Context, id, actor uuid.UUID, expiresInDays int, maxUses *int) (*domain.CommunityInvite, error) {
	if expiresInDays == 0 {
		expiresInDays = domain.DefaultInviteDays
	}
	if expiresInDays < 1 || expiresInDays > maxInviteDays {
		return nil, domain.Invalid("expires_in_days must be between 1 and %d", maxInviteDays)
	}
	if maxUses != nil && *maxUses < 1 {
		return nil, domain.Invalid("max_uses must be at least 1")
	}
	if _, err := s.requireManager(ctx, id, actor); err != nil {
		return nil, err
	}

	expires := s.now().UTC().AddDate(0, 0, expiresInDays)
	inv := &domain.CommunityInvite{
		CommunityID: id,
		CreatedBy:   actor,
		ExpiresAt:   &expires,
		MaxUses:     maxUses,
	}
	err := s.withFreshCode(domain.InviteCodeLength, func(code string) error {
		inv.InviteCode = code
		return s.communities.CreateInvite(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *CommunityService) Invites(ctx context.Context, id, actor uuid.UUID) ([]domain.CommunityInvite, error) {
	if _, err := s.requireManager(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.communities.ListInvites(ctx, id)
}

// CreatePrediction makes a prediction visible to the community's members.
func (s *CommunityService) CreatePrediction(ctx context.Context, id, owner uuid.UUID, question, category string, probability float64, deadline time.Time) (*domain.Prediction, error) {
	if _, err := s.member(ctx, id, owner); err != nil {
		return nil, err
	}
	return s.predictions.create(ctx, owner, &id, question, category, probability, deadline)
}

// CreateRing opens a debate ring listed in the community's feed.
func (s *CommunityService) CreateRing(ctx context.Context, id, owner uuid.UUID, topic string, opts RingOptions) (*domain.GroupDebate, error) {
	if _, err := s.member(ctx, id, owner); err != nil {
		return nil, err
	}
	return s.rings.create(ctx, owner, &id, topic, opts)
}

// ScopedPredictions is the owner's prediction feed: everything shared into
// their communities plus, with includeGlobal, unscoped predictions.
func (s *CommunityService) ScopedPredictions(ctx context.Context, owner uuid.UUID, includeGlobal bool) ([]domain.Prediction, error) {
	return s.predictions.predictions.ListScoped(ctx, owner, includeGlobal, maxScopedFeedSize)
}

// ScopedRings is ScopedPredictions for active debate rings.
func (s *CommunityService) ScopedRings(ctx context.Context, owner uuid.UUID, includeGlobal bool) ([]domain.GroupDebate, error) {
	return s.rings.rings.ListScoped(ctx, owner, includeGlobal)
}

func (s *CommunityService) member(ctx context.Context, id, userID uuid.UUID) (*domain.CommunityMember, error) {
	if _, err := s.communities.GetByID(ctx, id); err != nil {
		return nil, orNotFound(err, ErrCommunityNotFound)
	}
	m, err := s.communities.GetMember(ctx, id, userID)
	if err != nil {
		return nil, orNotFound(err, ErrNotMember)
	}
	return m, nil
}

func (s *CommunityService) requireManager(ctx context.Context, id, actor uuid.UUID) (*domain.CommunityMember, error) {
	m, err := s.member(ctx, id, actor)
	if errors.Is(err, ErrNotMember) {
		return nil, ErrNotCommunityAdmin
	}
	if err != nil {
		return nil, err
	}
	if !m.Role.CanManage() {
		return nil, ErrNotCommunityAdmin
	}
	return m, nil
}

func (s *CommunityService) managerAndTarget(ctx context.Context, id, actor, target uuid.UUID) (*domain.CommunityMember, *domain.CommunityMember, error) {
	by, err := s.requireManager(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	subject, err := s.communities.GetMember(ctx, id, target)
	if err != nil {
		return nil, nil, orNotFound(err, ErrNotMember)
	}
	if subject.Role == domain.RoleCreator {
		return nil, nil, ErrNotCommunityAdmin
	}
	return by, subject, nil
}

// withFreshCode retries fn with a new random code while the code collides
// with an existing one.
func (s *CommunityService) withFreshCode(length int, fn func(code string) error) error {
	var err error
	for range codeAttempts {
		var code string
		if code, err = randomCode(length); err != nil {
			return err
		}
		if err = fn(code); !errors.Is(err, store.ErrConflict) {
			return err
		}
	}
	return err
}

func randomCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

func redactCode(c *domain.Community) {
	if !c.UserRole.CanManage() {
		c.InviteCode = ""
	}
}
