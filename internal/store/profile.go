package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type ProfileStore struct {
	db DB
}

func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Create(ctx context.Context, p *domain.UserProfile) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO user_profiles (id, username, xp, level, brier_score, calibration_rank, calm_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		p.ID, p.Username, p.XP, p.Level, p.BrierScore, string(p.CalibrationRank), p.CalmScore,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return upstream(err, "profile store: create")
	}
	return nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	p := &domain.UserProfile{}
	var rank string
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT id, username, xp, level, total_debates, views_changed, brier_score, calibration_rank,
		        total_predictions, calm_score, total_training_sessions, created_at, updated_at
		 FROM user_profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Username, &p.XP, &p.Level, &p.TotalDebates, &p.ViewsChanged, &p.BrierScore, &rank,
		&p.TotalPredictions, &p.CalmScore, &p.TotalTrainingSessions, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "profile store: get")
	}
	p.CalibrationRank = domain.CalibrationRank(rank)
	return p, nil
}

func (s *ProfileStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := conn(ctx, s.db).Query(ctx, `SELECT id FROM user_profiles ORDER BY id`)
	if err != nil {
		return nil, upstream(err, "profile store: list ids")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, upstream(err, "profile store: scan id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "profile store: list ids")
	}
	return ids, nil
}

func (s *ProfileStore) UpdateCalibration(ctx context.Context, id uuid.UUID, brier float64, rank domain.CalibrationRank) error {
	return s.update(ctx, "profile store: update calibration",
		`UPDATE user_profiles SET brier_score = $2, calibration_rank = $3, updated_at = NOW() WHERE id = $1`,
		id, brier, string(rank))
}

func (s *ProfileStore) UpdateCalm(ctx context.Context, id uuid.UUID, calm float64, totalSessions int) error {
	return s.update(ctx, "profile store: update calm",
		`UPDATE user_profiles SET calm_score = $2, total_training_sessions = $3, updated_at = NOW() WHERE id = $1`,
		id, calm, totalSessions)
}

func (s *ProfileStore) UpdateViewsChanged(ctx context.Context, id uuid.UUID, viewsChanged int) error {
	return s.update(ctx, "profile store: update views changed",
		`UPDATE user_profiles SET views_changed = $2, updated_at = NOW() WHERE id = $1`,
		id, viewsChanged)
}

func (s *ProfileStore) UpdateXP(ctx context.Context, id uuid.UUID, xp, level int) error {
	return s.update(ctx, "profile store: update xp",
		`UPDATE user_profiles SET xp = $2, level = $3, updated_at = NOW() WHERE id = $1`,
		id, xp, level)
}

func (s *ProfileStore) IncrementTotalDebates(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, "profile store: increment debates",
		`UPDATE user_profiles SET total_debates = total_debates + 1, updated_at = NOW() WHERE id = $1`,
		id)
}

func (s *ProfileStore) IncrementTotalPredictions(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, "profile store: increment predictions",
		`UPDATE user_profiles SET total_predictions = total_predictions + 1, updated_at = NOW() WHERE id = $1`,
		id)
}

func (s *ProfileStore) update(ctx context.Context, op, sql string, args ...any) error {
	tag, err := conn(ctx, s.db).Exec(ctx, sql, args...)
	if err != nil {
		return upstream(err, op)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
