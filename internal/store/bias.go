package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type BiasStore struct {
	db DB
}

func NewBiasStore(db DB) *BiasStore {
	return &BiasStore{db: db}
}

func (s *BiasStore) Create(ctx context.Context, b *domain.CognitiveBias) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO cognitive_biases (owner_id, bias_type, bias_name, severity, color, description, example_text, debate_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, detected_at`,
		b.OwnerID, b.BiasType, b.BiasName, b.Severity, b.Color, b.Description, b.ExampleText, b.DebateID,
	).Scan(&b.ID, &b.DetectedAt)
	if err != nil {
		return upstream(err, "bias store: create")
	}
	return nil
}

func (s *BiasStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CognitiveBias, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT id, owner_id, bias_type, bias_name, severity, color, description, example_text, debate_id, detected_at
		 FROM cognitive_biases WHERE owner_id = $1 ORDER BY detected_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, upstream(err, "bias store: list")
	}
	defer rows.Close()

	biases := []domain.CognitiveBias{}
	for rows.Next() {
		var b domain.CognitiveBias
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.BiasType, &b.BiasName, &b.Severity, &b.Color, &b.Description,
			&b.ExampleText, &b.DebateID, &b.DetectedAt); err != nil {
			return nil, upstream(err, "bias store: scan")
		}
		biases = append(biases, b)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "bias store: list")
	}
	return biases, nil
}
