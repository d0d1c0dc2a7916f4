package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type BeliefStore struct {
	db DB
}

func NewBeliefStore(db DB) *BeliefStore {
	return &BeliefStore{db: db}
}

const beliefColumns = `id, owner_id, topic, icon, initial_confidence, current_confidence, status, last_updated_at, created_at`

func scanBelief(row pgx.Row) (*domain.Belief, error) {
	b := &domain.Belief{}
	var status string
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Topic, &b.Icon, &b.InitialConfidence, &b.CurrentConfidence,
		&status, &b.LastUpdatedAt, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.BeliefStatus(status)
	return b, nil
}

func (s *BeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	var embedding *pgvector.Vector
	if len(b.TopicEmbedding) > 0 {
		v := pgvector.NewVector(b.TopicEmbedding)
		embedding = &v
	}

	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO beliefs (owner_id, topic, icon, initial_confidence, current_confidence, status, topic_embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, last_updated_at, created_at`,
		b.OwnerID, b.Topic, b.Icon, b.InitialConfidence, b.CurrentConfidence, string(b.Status), embedding,
	).Scan(&b.ID, &b.LastUpdatedAt, &b.CreatedAt)
	if err != nil {
		return upstream(err, "belief store: create")
	}
	return nil
}

func (s *BeliefStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Belief, error) {
	b, err := scanBelief(conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+beliefColumns+` FROM beliefs WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if err != nil {
		return nil, notFoundOr(err, "belief store: get")
	}
	return b, nil
}

func (s *BeliefStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Belief, error) {
	return s.list(ctx, "belief store: list",
		`SELECT `+beliefColumns+` FROM beliefs WHERE owner_id = $1 ORDER BY last_updated_at DESC`,
		ownerID)
}

func (s *BeliefStore) FindByTopic(ctx context.Context, ownerID uuid.UUID, topic string) (*domain.Belief, error) {
	b, err := scanBelief(conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+beliefColumns+` FROM beliefs
		 WHERE owner_id = $1 AND lower(topic) = lower($2)
		 ORDER BY last_updated_at DESC LIMIT 1`,
		ownerID, topic,
	))
	if err != nil {
		return nil, notFoundOr(err, "belief store: find by topic")
	}
	return b, nil
}

func (s *BeliefStore) FindSimilarTopic(ctx context.Context, ownerID uuid.UUID, embedding []float32, threshold float32) (*domain.Belief, error) {
	vec := pgvector.NewVector(embedding)
	b, err := scanBelief(conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+beliefColumns+` FROM beliefs
		 WHERE owner_id = $2 AND topic_embedding IS NOT NULL AND 1 - (topic_embedding <=> $1) >= $3
		 ORDER BY topic_embedding <=> $1 LIMIT 1`,
		vec, ownerID, threshold,
	))
	if err != nil {
		return nil, notFoundOr(err, "belief store: find similar topic")
	}
	return b, nil
}

func (s *BeliefStore) UpdateConfidence(ctx context.Context, b *domain.Belief) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`UPDATE beliefs SET current_confidence = $3, status = $4, last_updated_at = NOW()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING last_updated_at`,
		b.ID, b.OwnerID, b.CurrentConfidence, string(b.Status),
	).Scan(&b.LastUpdatedAt)
	if err != nil {
		return notFoundOr(err, "belief store: update confidence")
	}
	return nil
}

func (s *BeliefStore) AppendChange(ctx context.Context, c *domain.BeliefChange) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO belief_changes (belief_id, owner_id, topic, confidence_before, confidence_after, debate_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, changed_at`,
		c.BeliefID, c.OwnerID, c.Topic, c.ConfidenceBefore, c.ConfidenceAfter, c.DebateID,
	).Scan(&c.ID, &c.ChangedAt)
	if err != nil {
		return upstream(err, "belief store: append change")
	}
	return nil
}

func (s *BeliefStore) ListChanges(ctx context.Context, ownerID uuid.UUID) ([]domain.BeliefChange, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT id, belief_id, owner_id, topic, confidence_before, confidence_after, debate_id, changed_at
		 FROM belief_changes WHERE owner_id = $1 ORDER BY changed_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, upstream(err, "belief store: list changes")
	}
	defer rows.Close()

	changes := []domain.BeliefChange{}
	for rows.Next() {
		var c domain.BeliefChange
		if err := rows.Scan(&c.ID, &c.BeliefID, &c.OwnerID, &c.Topic, &c.ConfidenceBefore, &c.ConfidenceAfter,
			&c.DebateID, &c.ChangedAt); err != nil {
			return nil, upstream(err, "belief store: scan change")
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "belief store: list changes")
	}
	return changes, nil
}

func (s *BeliefStore) list(ctx context.Context, op, sql string, args ...any) ([]domain.Belief, error) {
	rows, err := conn(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, upstream(err, op)
	}
	defer rows.Close()

	beliefs := []domain.Belief{}
	for rows.Next() {
		b, err := scanBelief(rows)
		if err != nil {
			return nil, upstream(err, op)
		}
		beliefs = append(beliefs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, op)
	}
	return beliefs, nil
}
