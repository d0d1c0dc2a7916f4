package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/store"
)

const apiKeyPrefix = "ak_"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

type ProfileService struct {
	users        domain.UserStore
	profiles     domain.ProfileStore
	skills       domain.SkillStore
	achievements domain.AchievementStore
	tx           domain.Transactor
	logger       *zap.Logger
}

func NewProfileService(us domain.UserStore, ps domain.ProfileStore, ss domain.SkillStore, as domain.AchievementStore, tx domain.Transactor, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: us, profiles: ps, skills: ss, achievements: as, tx: tx, logger: logger}
}

// Register creates a user with an empty profile and the default skills at
// level 0. The returned API key is shown once; only its hash is stored.
func (s *ProfileService) Register(ctx context.Context, username string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, "", domain.Invalid("username must be 3-32 letters, digits, '.', '_' or '-'")
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, "", err
	}
	u := &domain.User{Username: username, APIKeyHash: HashAPIKey(apiKey)}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		if err := s.profiles.Create(ctx, domain.NewProfile(u.ID, u.Username)); err != nil {
			return err
		}
		return s.skills.EnsureDefaults(ctx, u.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID.String()))
	return u, apiKey, nil
}

// Authenticate resolves an API key to its user.
func (s *ProfileService) Authenticate(ctx context.Context, apiKey string) (*domain.User, error) {
	if !strings.HasPrefix(apiKey, apiKeyPrefix) {
		return nil, domain.ErrNotAuthenticated
	}
	u, err := s.users.GetByAPIKeyHash(ctx, HashAPIKey(apiKey))
	if err != nil {
		return nil, orNotFound(err, domain.ErrNotAuthenticated)
	}
	return u, nil
}

func (s *ProfileService) Get(ctx context.Context, owner uuid.UUID) (*domain.UserProfile, error) {
	p, err := s.profiles.GetByID(ctx, owner)
	if err != nil {
		return nil, orNotFound(err, ErrProfileNotFound)
	}
	return p, nil
}

// AwardXP adds gain to the owner's XP and recomputes the level.
func (s *ProfileService) AwardXP(ctx context.Context, owner uuid.UUID, gain int) (*domain.UserProfile, error) {
	if gain <= 0 {
		return nil, domain.Invalid("xp gain must be positive")
	}
	var p *domain.UserProfile
	err := s.tx.InOwnerTx(ctx, owner, func(ctx context.Context) error {
		var err error
		if p, err = s.profiles.GetByID(ctx, owner); err != nil {
			return err
		}
		p.XP += gain
		p.Level = domain.LevelForXP(p.XP)
		return s.profiles.UpdateXP(ctx, owner, p.XP, p.Level)
	})
	if err != nil {
		return nil, orNotFound(err, ErrProfileNotFound)
	}
	return p, nil
}

// Skills returns the owner's cognitive skills, seeding the defaults for
// users registered before skills were tracked.
func (s *ProfileService) Skills(ctx context.Context, owner uuid.UUID) ([]domain.CognitiveSkill, error) {
	skills, err := s.skills.ListByUser(ctx, owner)
	if err != nil || len(skills) > 0 {
		return skills, err
	}
	if err := s.skills.EnsureDefaults(ctx, owner); err != nil {
		return nil, err
	}
	return s.skills.ListByUser(ctx, owner)
}

// UpdateSkillLevel sets a skill's level, clamped to 0-100. Unknown skill
// names are created.
func (s *ProfileService) UpdateSkillLevel(ctx context.Context, owner uuid.UUID, name string, level int) (*domain.CognitiveSkill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("skill name is required")
	}
	sk := &domain.CognitiveSkill{UserID: owner, SkillName: name, Level: domain.ClampSkillLevel(level)}
	for _, d := range domain.DefaultSkills {
		if strings.EqualFold(d.SkillName, name) {
			sk.SkillName, sk.Color = d.SkillName, d.Color
			break
		}
	}
	if err := s.skills.Upsert(ctx, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

// Achievements returns the full achievement catalog.
func (s *ProfileService) Achievements(ctx context.Context) ([]domain.Achievement, error) {
	return s.achievements.ListAll(ctx)
}

func (s *ProfileService) UserAchievements(ctx context.Context, owner uuid.UUID) ([]domain.UserAchievement, error) {
	return s.achievements.ListByUser(ctx, owner)
}

// UnlockAchievement grants the achievement with code to owner. Each
// achievement unlocks once.
func (s *ProfileService) UnlockAchievement(ctx context.Context, owner uuid.UUID, code string) (*domain.UserAchievement, error) {
	a, err := s.achievements.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, orNotFound(err, ErrAchievementUnknown)
	}
	ua := &domain.UserAchievement{UserID: owner, AchievementID: a.ID, Achievement: a}
	if err := s.achievements.Unlock(ctx, ua); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAchievementUnlocked
		}
		return nil, err
	}
	s.logger.Info("achievement unlocked",
		zap.String("user_id", owner.String()),
		zap.String("code", a.Code))
	return ua, nil
}

// SyncAchievements unlocks every catalog achievement the owner's profile
// now satisfies and returns the newly unlocked ones.
func (s *ProfileService) SyncAchievements(ctx context.Context, owner uuid.UUID) ([]domain.UserAchievement, error) {
	p, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	catalog, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	held, err := s.achievements.ListByUser(ctx, owner)
	if err != nil {
		return nil, err
	}
	have := make(map[uuid.UUID]bool, len(held))
	for _, ua := range held {
		have[ua.AchievementID] = true
	}

	unlocked := []domain.UserAchievement{}
	for _, a := range catalog {
		if have[a.ID] || !a.Earned(p) {
			continue
		}
		ua, err := s.UnlockAchievement(ctx, owner, a.Code)
		if errors.Is(err, ErrAchievementUnlocked) {
			continue
		}
		if err != nil {
			return nil, err
		}
		unlocked = append(unlocked, *ua)
	}
	return unlocked, nil
}

func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}
