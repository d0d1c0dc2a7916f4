package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type PredictionStore struct {
	db DB
}

func NewPredictionStore(db DB) *PredictionStore {
	return &PredictionStore{db: db}
}

const predictionColumns = `id, owner_id, question, category, probability, community_probability, deadline,
	community_id, resolved, outcome, brier_score, created_at, resolved_at`

func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	p := &domain.Prediction{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.Question, &p.Category, &p.Probability, &p.CommunityProbability,
		&p.Deadline, &p.CommunityID, &p.Resolved, &p.Outcome, &p.BrierScore, &p.CreatedAt, &p.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PredictionStore) Create(ctx context.Context, p *domain.Prediction) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO predictions (owner_id, question, category, probability, community_probability, deadline,
		                          community_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		p.OwnerID, p.Question, p.Category, p.Probability, p.CommunityProbability, p.Deadline, p.CommunityID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return upstream(err, "prediction store: create")
	}
	return nil
}

func (s *PredictionStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Prediction, error) {
	p, err := scanPrediction(conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+predictionColumns+` FROM predictions WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if err != nil {
		return nil, notFoundOr(err, "prediction store: get")
	}
	return p, nil
}

func (s *PredictionStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Prediction, error) {
	return s.list(ctx, "prediction store: list",
		`SELECT `+predictionColumns+` FROM predictions WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
}

func (s *PredictionStore) ListOpen(ctx context.Context, limit int) ([]domain.Prediction, error) {
	return s.list(ctx, "prediction store: list open",
		`SELECT `+predictionColumns+` FROM predictions WHERE resolved = false ORDER BY deadline ASC LIMIT $1`,
		limit)
}

func (s *PredictionStore) ListScoped(ctx context.Context, userID uuid.UUID, includeGlobal bool, limit int) ([]domain.Prediction, error) {
	return s.list(ctx, "prediction store: list scoped",
		`SELECT `+predictionColumns+` FROM predictions
		 WHERE ($2 AND community_id IS NULL)
		    OR community_id IN (SELECT community_id FROM community_members WHERE user_id = $1)
		 ORDER BY created_at DESC LIMIT $3`,
		userID, includeGlobal, limit)
}

func (s *PredictionStore) UpdateProbability(ctx context.Context, id, ownerID uuid.UUID, probability float64) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE predictions SET probability = $3 WHERE id = $1 AND owner_id = $2 AND resolved = false`,
		id, ownerID, probability,
	)
	if err != nil {
		return upstream(err, "prediction store: update probability")
	}
	if tag.RowsAffected() == 0 {
		return s.missOrResolved(ctx, id, ownerID)
	}
	return nil
}

func (s *PredictionStore) Resolve(ctx context.Context, id, ownerID uuid.UUID, outcome bool, brier float64, resolvedAt time.Time) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE predictions SET resolved = true, outcome = $3, brier_score = $4, resolved_at = $5
		 WHERE id = $1 AND owner_id = $2 AND resolved = false`,
		id, ownerID, outcome, brier, resolvedAt,
	)
	if err != nil {
		return upstream(err, "prediction store: resolve")
	}
	if tag.RowsAffected() == 0 {
		return s.missOrResolved(ctx, id, ownerID)
	}
	return nil
}

// missOrResolved explains a compare-and-set that matched no row.
func (s *PredictionStore) missOrResolved(ctx context.Context, id, ownerID uuid.UUID) error {
	var resolved bool
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT resolved FROM predictions WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&resolved)
	if err != nil {
		return notFoundOr(err, "prediction store: check resolved")
	}
	return domain.ErrAlreadyResolved
}

func (s *PredictionStore) ResolvedBrierScores(ctx context.Context, ownerID uuid.UUID) ([]float64, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT brier_score FROM predictions
		 WHERE owner_id = $1 AND resolved = true AND brier_score IS NOT NULL`,
		ownerID,
	)
	if err != nil {
		return nil, upstream(err, "prediction store: resolved scores")
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, upstream(err, "prediction store: scan score")
		}
		scores = append(scores, v)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "prediction store: resolved scores")
	}
	return scores, nil
}

func (s *PredictionStore) list(ctx context.Context, op, sql string, args ...any) ([]domain.Prediction, error) {
	rows, err := conn(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, upstream(err, op)
	}
	defer rows.Close()

	predictions := []domain.Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, upstream(err, op)
		}
		predictions = append(predictions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, op)
	}
	return predictions, nil
}
