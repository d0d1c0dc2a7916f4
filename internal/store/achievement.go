package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type AchievementStore struct {
	db DB
}

func NewAchievementStore(db DB) *AchievementStore {
	return &AchievementStore{db: db}
}

const achievementColumns = `a.id, a.code, a.title, a.description, a.icon, a.requirement_type, a.requirement_count`

func scanAchievement(row pgx.Row, extra ...any) (*domain.Achievement, error) {
	a := &domain.Achievement{}
	dest := append([]any{&a.ID, &a.Code, &a.Title, &a.Description, &a.Icon, &a.RequirementType, &a.RequirementCount}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AchievementStore) ListAll(ctx context.Context) ([]domain.Achievement, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT `+achievementColumns+` FROM achievements a ORDER BY a.requirement_type, a.requirement_count`)
	if err != nil {
		return nil, upstream(err, "achievement store: list")
	}
	defer rows.Close()

	achievements := []domain.Achievement{}
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, upstream(err, "achievement store: scan")
		}
		achievements = append(achievements, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "achievement store: list")
	}
	return achievements, nil
}

func (s *AchievementStore) GetByCode(ctx context.Context, code string) (*domain.Achievement, error) {
	a, err := scanAchievement(conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+achievementColumns+` FROM achievements a WHERE a.code = $1`, code))
	if err != nil {
		return nil, notFoundOr(err, "achievement store: get by code")
	}
	return a, nil
}

func (s *AchievementStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserAchievement, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT `+achievementColumns+`, ua.id, ua.unlocked_at
		 FROM user_achievements ua JOIN achievements a ON a.id = ua.achievement_id
		 WHERE ua.user_id = $1
		 ORDER BY ua.unlocked_at DESC`,
		userID,
	)
	if err != nil {
		return nil, upstream(err, "achievement store: list unlocked")
	}
	defer rows.Close()

	unlocked := []domain.UserAchievement{}
	for rows.Next() {
		ua := domain.UserAchievement{UserID: userID}
		a, err := scanAchievement(rows, &ua.ID, &ua.UnlockedAt)
		if err != nil {
			return nil, upstream(err, "achievement store: scan unlocked")
		}
		ua.AchievementID = a.ID
		ua.Achievement = a
		unlocked = append(unlocked, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "achievement store: list unlocked")
	}
	return unlocked, nil
}

func (s *AchievementStore) Unlock(ctx context.Context, ua *domain.UserAchievement) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO user_achievements (user_id, achievement_id) VALUES ($1, $2)
		 RETURNING id, unlocked_at`,
		ua.UserID, ua.AchievementID,
	).Scan(&ua.ID, &ua.UnlockedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return upstream(err, "achievement store: unlock")
	}
	return nil
}
