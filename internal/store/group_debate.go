package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

// MessageChannel is the NOTIFY channel group messages are published on.
const MessageChannel = "group_debate_messages"

type GroupDebateStore struct {
	db DB
}

func NewGroupDebateStore(db DB) *GroupDebateStore {
	return &GroupDebateStore{db: db}
}

const groupDebateSelect = `SELECT g.id, g.topic, g.created_by, g.status, g.max_participants, g.is_anonymous,
	g.is_featured, g.intensity_level, g.category, g.ends_at, g.community_id, g.created_at,
	(SELECT count(*) FROM group_debate_participants p WHERE p.debate_id = g.id AND p.left_at IS NULL)
	FROM group_debates g`

func scanGroupDebate(row pgx.Row) (*domain.GroupDebate, error) {
	g := &domain.GroupDebate{}
	var status string
	err := row.Scan(&g.ID, &g.Topic, &g.CreatedBy, &status, &g.MaxParticipants, &g.IsAnonymous,
		&g.IsFeatured, &g.IntensityLevel, &g.Category, &g.EndsAt, &g.CommunityID, &g.CreatedAt, &g.ParticipantCount)
	if err != nil {
		return nil, err
	}
	g.Status = domain.GroupDebateStatus(status)
	return g, nil
}

func (s *GroupDebateStore) Create(ctx context.Context, g *domain.GroupDebate) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO group_debates (topic, created_by, status, max_participants, is_anonymous, is_featured,
		                            intensity_level, category, ends_at, community_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		g.Topic, g.CreatedBy, string(g.Status), g.MaxParticipants, g.IsAnonymous, g.IsFeatured,
		g.IntensityLevel, g.Category, g.EndsAt, g.CommunityID,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return upstream(err, "group debate store: create")
	}
	return nil
}

func (s *GroupDebateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupDebate, error) {
	g, err := scanGroupDebate(conn(ctx, s.db).QueryRow(ctx, groupDebateSelect+` WHERE g.id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "group debate store: get")
	}
	return g, nil
}

// GetByIDForUpdate is GetByID holding the ring's row lock until the
// enclosing transaction ends, so capacity checks and joins are serialized.
func (s *GroupDebateStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GroupDebate, error) {
	g, err := scanGroupDebate(conn(ctx, s.db).QueryRow(ctx, groupDebateSelect+` WHERE g.id = $1 FOR UPDATE OF g`, id))
	if err != nil {
		return nil, notFoundOr(err, "group debate store: lock")
	}
	return g, nil
}

func (s *GroupDebateStore) ListActive(ctx context.Context, includeAnonymous bool) ([]domain.GroupDebate, error) {
	return s.list(ctx, "group debate store: list active",
		groupDebateSelect+` WHERE g.status = 'active' AND ($1 OR g.is_anonymous = false)
		 ORDER BY g.created_at DESC`,
		includeAnonymous)
}

func (s *GroupDebateStore) ListFeatured(ctx context.Context) ([]domain.GroupDebate, error) {
	return s.list(ctx, "group debate store: list featured",
		groupDebateSelect+` WHERE g.status = 'active' AND g.is_featured = true ORDER BY g.created_at DESC`)
}

func (s *GroupDebateStore) ListScoped(ctx context.Context, userID uuid.UUID, includeGlobal bool) ([]domain.GroupDebate, error) {
	return s.list(ctx, "group debate store: list scoped",
		groupDebateSelect+` WHERE g.status = 'active'
		   AND (($2 AND g.community_id IS NULL)
		        OR g.community_id IN (SELECT community_id FROM community_members WHERE user_id = $1))
		 ORDER BY g.created_at DESC`,
		userID, includeGlobal)
}

func (s *GroupDebateStore) Update(ctx context.Context, g *domain.GroupDebate) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE group_debates
		 SET topic = $2, status = $3, max_participants = $4, is_anonymous = $5, is_featured = $6,
		     intensity_level = $7, category = $8, ends_at = $9
		 WHERE id = $1`,
		g.ID, g.Topic, string(g.Status), g.MaxParticipants, g.IsAnonymous, g.IsFeatured,
		g.IntensityLevel, g.Category, g.EndsAt,
	)
	if err != nil {
		return upstream(err, "group debate store: update")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GroupDebateStore) CountActiveParticipants(ctx context.Context, debateID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT count(*) FROM group_debate_participants WHERE debate_id = $1 AND left_at IS NULL`,
		debateID,
	).Scan(&n)
	if err != nil {
		return 0, upstream(err, "group debate store: count participants")
	}
	return n, nil
}

func (s *GroupDebateStore) IsActiveParticipant(ctx context.Context, debateID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_debate_participants
		                WHERE debate_id = $1 AND user_id = $2 AND left_at IS NULL)`,
		debateID, userID,
	).Scan(&ok)
	if err != nil {
		return false, upstream(err, "group debate store: check participant")
	}
	return ok, nil
}

func (s *GroupDebateStore) Join(ctx context.Context, p *domain.GroupParticipant) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO group_debate_participants (debate_id, user_id, anonymous_mask_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (debate_id, user_id) DO UPDATE
		   SET left_at = NULL,
		       joined_at = CASE WHEN group_debate_participants.left_at IS NULL
		                        THEN group_debate_participants.joined_at ELSE NOW() END,
		       anonymous_mask_id = COALESCE(EXCLUDED.anonymous_mask_id, group_debate_participants.anonymous_mask_id)
		 RETURNING id, joined_at`,
		p.DebateID, p.UserID, p.AnonymousMaskID,
	).Scan(&p.ID, &p.JoinedAt)
	if err != nil {
		return upstream(err, "group debate store: join")
	}
	p.LeftAt = nil
	return nil
}

func (s *GroupDebateStore) Leave(ctx context.Context, debateID, userID uuid.UUID, leftAt time.Time) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE group_debate_participants SET left_at = $3
		 WHERE debate_id = $1 AND user_id = $2 AND left_at IS NULL`,
		debateID, userID, leftAt,
	)
	if err != nil {
		return upstream(err, "group debate store: leave")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GroupDebateStore) AppendMessage(ctx context.Context, m *domain.GroupMessage) error {
	q := conn(ctx, s.db)
	err := q.QueryRow(ctx,
		`INSERT INTO group_debate_messages (debate_id, user_id, sender_name, sender_type, content, reply_to_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		m.DebateID, m.UserID, m.SenderName, string(m.SenderType), m.Content, m.ReplyToID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return upstream(err, "group debate store: append message")
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "group debate store: marshal notification")
	}
	if _, err := q.Exec(ctx, `SELECT pg_notify($1, $2)`, MessageChannel, string(payload)); err != nil {
		return upstream(err, "group debate store: notify")
	}
	return nil
}

// ListMessages returns the latest limit messages in chronological order.
func (s *GroupDebateStore) ListMessages(ctx context.Context, debateID uuid.UUID, limit int) ([]domain.GroupMessage, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT id, debate_id, user_id, sender_name, sender_type, content, reply_to_id, created_at
		 FROM (
		   SELECT * FROM group_debate_messages WHERE debate_id = $1 ORDER BY created_at DESC LIMIT $2
		 ) latest
		 ORDER BY created_at ASC`,
		debateID, limit,
	)
	if err != nil {
		return nil, upstream(err, "group debate store: list messages")
	}
	defer rows.Close()

	messages := []domain.GroupMessage{}
	for rows.Next() {
		var (
			m      domain.GroupMessage
			sender string
		)
		if err := rows.Scan(&m.ID, &m.DebateID, &m.UserID, &m.SenderName, &sender, &m.Content,
			&m.ReplyToID, &m.CreatedAt); err != nil {
			return nil, upstream(err, "group debate store: scan message")
		}
		m.SenderType = domain.SenderType(sender)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "group debate store: list messages")
	}
	return messages, nil
}

func (s *GroupDebateStore) list(ctx context.Context, op, sql string, args ...any) ([]domain.GroupDebate, error) {
	rows, err := conn(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, upstream(err, op)
	}
	defer rows.Close()

	debates := []domain.GroupDebate{}
	for rows.Next() {
		g, err := scanGroupDebate(rows)
		if err != nil {
			return nil, upstream(err, op)
		}
		debates = append(debates, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, op)
	}
	return debates, nil
}
