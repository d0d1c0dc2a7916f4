package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type SkillStore struct {
	db DB
}

func NewSkillStore(db DB) *SkillStore {
	return &SkillStore{db: db}
}

func (s *SkillStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CognitiveSkill, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT id, user_id, skill_name, level, color, updated_at
		 FROM cognitive_skills WHERE user_id = $1 ORDER BY skill_name`,
		userID,
	)
	if err != nil {
		return nil, upstream(err, "skill store: list")
	}
	defer rows.Close()

	skills := []domain.CognitiveSkill{}
	for rows.Next() {
		var sk domain.CognitiveSkill
		if err := rows.Scan(&sk.ID, &sk.UserID, &sk.SkillName, &sk.Level, &sk.Color, &sk.UpdatedAt); err != nil {
			return nil, upstream(err, "skill store: scan")
		}
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "skill store: list")
	}
	return skills, nil
}

func (s *SkillStore) Upsert(ctx context.Context, sk *domain.CognitiveSkill) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO cognitive_skills (user_id, skill_name, level, color)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, skill_name) DO UPDATE
		   SET level = EXCLUDED.level, updated_at = NOW()
		 RETURNING id, color, updated_at`,
		sk.UserID, sk.SkillName, sk.Level, sk.Color,
	).Scan(&sk.ID, &sk.Color, &sk.UpdatedAt)
	if err != nil {
		return upstream(err, "skill store: upsert")
	}
	return nil
}

func (s *SkillStore) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	names := make([]string, len(domain.DefaultSkills))
	colors := make([]string, len(domain.DefaultSkills))
	for i, sk := range domain.DefaultSkills {
		names[i] = sk.SkillName
		colors[i] = sk.Color
	}
	_, err := conn(ctx, s.db).Exec(ctx,
		`INSERT INTO cognitive_skills (user_id, skill_name, level, color)
		 SELECT $1, d.name, 0, d.color FROM unnest($2::text[], $3::text[]) AS d(name, color)
		 ON CONFLICT (user_id, skill_name) DO NOTHING`,
		userID, names, colors,
	)
	if err != nil {
		return upstream(err, "skill store: ensure defaults")
	}
	return nil
}
