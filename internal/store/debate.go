package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type DebateStore struct {
	db DB
}

func NewDebateStore(db DB) *DebateStore {
	return &DebateStore{db: db}
}

func (s *DebateStore) Create(ctx context.Context, d *domain.Debate) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO debates (owner_id, persona_id, topic, steel_man_level, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		d.OwnerID, d.PersonaID, d.Topic, d.SteelManLevel, string(d.Status),
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return upstream(err, "debate store: create")
	}
	return nil
}

func (s *DebateStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Debate, error) {
	d := &domain.Debate{}
	var status string
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT id, owner_id, persona_id, topic, steel_man_level, status, created_at, ended_at
		 FROM debates WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&d.ID, &d.OwnerID, &d.PersonaID, &d.Topic, &d.SteelManLevel, &status, &d.CreatedAt, &d.EndedAt)
	if err != nil {
		return nil, notFoundOr(err, "debate store: get")
	}
	d.Status = domain.DebateStatus(status)
	return d, nil
}

func (s *DebateStore) UpdateSteelManLevel(ctx context.Context, id uuid.UUID, level float64) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE debates SET steel_man_level = $2 WHERE id = $1`,
		id, level,
	)
	if err != nil {
		return upstream(err, "debate store: update steel man level")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// End marks an active or paused debate as ended. Ending twice is reported as a conflict.
func (s *DebateStore) End(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE debates SET status = 'ended', ended_at = $2 WHERE id = $1 AND status <> 'ended'`,
		id, endedAt,
	)
	if err != nil {
		return upstream(err, "debate store: end")
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (s *DebateStore) AppendMessage(ctx context.Context, m *domain.DebateMessage) error {
	var factCheck []byte
	if m.FactCheck != nil {
		b, err := json.Marshal(m.FactCheck)
		if err != nil {
			return eris.Wrap(err, "debate store: marshal fact check")
		}
		factCheck = b
	}

	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO debate_messages (debate_id, sender_type, content, fact_check)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		m.DebateID, string(m.SenderType), m.Content, factCheck,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return upstream(err, "debate store: append message")
	}
	return nil
}

func (s *DebateStore) ListMessages(ctx context.Context, debateID uuid.UUID) ([]domain.DebateMessage, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT id, debate_id, sender_type, content, fact_check, created_at
		 FROM debate_messages WHERE debate_id = $1 ORDER BY created_at ASC`,
		debateID,
	)
	if err != nil {
		return nil, upstream(err, "debate store: list messages")
	}
	defer rows.Close()

	messages := []domain.DebateMessage{}
	for rows.Next() {
		var (
			m         domain.DebateMessage
			sender    string
			factCheck []byte
		)
		if err := rows.Scan(&m.ID, &m.DebateID, &sender, &m.Content, &factCheck, &m.CreatedAt); err != nil {
			return nil, upstream(err, "debate store: scan message")
		}
		m.SenderType = domain.SenderType(sender)
		if len(factCheck) > 0 {
			var fc domain.FactCheck
			if err := json.Unmarshal(factCheck, &fc); err == nil {
				m.FactCheck = &fc
			}
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "debate store: list messages")
	}
	return messages, nil
}
