package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type DeEscalationStore struct {
	db DB
}

func NewDeEscalationStore(db DB) *DeEscalationStore {
	return &DeEscalationStore{db: db}
}

const sessionColumns = `id, owner_id, scenario_type, initial_calm_score, current_calm_score, final_calm_score,
	turn_count, positive_turns, negative_turns, completed, created_at, completed_at`

func scanSession(row pgx.Row) (*domain.DeEscalationSession, error) {
	s := &domain.DeEscalationSession{}
	err := row.Scan(&s.ID, &s.OwnerID, &s.ScenarioType, &s.InitialCalmScore, &s.CurrentCalmScore, &s.FinalCalmScore,
		&s.TurnCount, &s.PositiveTurns, &s.NegativeTurns, &s.Completed, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DeEscalationStore) CreateSession(ctx context.Context, sess *domain.DeEscalationSession) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO deescalation_sessions (owner_id, scenario_type, initial_calm_score, current_calm_score)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		sess.OwnerID, sess.ScenarioType, sess.InitialCalmScore, sess.CurrentCalmScore,
	).Scan(&sess.ID, &sess.CreatedAt)
	if err != nil {
		return upstream(err, "deescalation store: create session")
	}
	return nil
}

func (s *DeEscalationStore) GetSession(ctx context.Context, id, ownerID uuid.UUID) (*domain.DeEscalationSession, error) {
	sess, err := scanSession(conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM deescalation_sessions WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if err != nil {
		return nil, notFoundOr(err, "deescalation store: get session")
	}
	return sess, nil
}

func (s *DeEscalationStore) UpdateProgress(ctx context.Context, sess *domain.DeEscalationSession) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE deescalation_sessions
		 SET current_calm_score = $3, turn_count = $4, positive_turns = $5, negative_turns = $6
		 WHERE id = $1 AND owner_id = $2 AND completed = false`,
		sess.ID, sess.OwnerID, sess.CurrentCalmScore, sess.TurnCount, sess.PositiveTurns, sess.NegativeTurns,
	)
	if err != nil {
		return upstream(err, "deescalation store: update progress")
	}
	if tag.RowsAffected() == 0 {
		return s.missOrCompleted(ctx, sess)
	}
	return nil
}

func (s *DeEscalationStore) Complete(ctx context.Context, sess *domain.DeEscalationSession) error {
	tag, err := conn(ctx, s.db).Exec(ctx,
		`UPDATE deescalation_sessions
		 SET completed = true, final_calm_score = $3, completed_at = $4,
		     turn_count = $5, positive_turns = $6, negative_turns = $7
		 WHERE id = $1 AND owner_id = $2 AND completed = false`,
		sess.ID, sess.OwnerID, sess.FinalCalmScore, sess.CompletedAt,
		sess.TurnCount, sess.PositiveTurns, sess.NegativeTurns,
	)
	if err != nil {
		return upstream(err, "deescalation store: complete")
	}
	if tag.RowsAffected() == 0 {
		return s.missOrCompleted(ctx, sess)
	}
	return nil
}

func (s *DeEscalationStore) missOrCompleted(ctx context.Context, sess *domain.DeEscalationSession) error {
	var completed bool
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT completed FROM deescalation_sessions WHERE id = $1 AND owner_id = $2`,
		sess.ID, sess.OwnerID,
	).Scan(&completed)
	if err != nil {
		return notFoundOr(err, "deescalation store: check completed")
	}
	return domain.ErrSessionCompleted
}

func (s *DeEscalationStore) AppendTurn(ctx context.Context, t *domain.DeEscalationTurn) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO deescalation_turns (session_id, user_text, prompt_text, sentiment_score, calm_words, aggressive_words)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		t.SessionID, t.UserText, t.PromptText, t.Sentiment.Score, t.Sentiment.CalmWords, t.Sentiment.AggressiveWords,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return upstream(err, "deescalation store: append turn")
	}
	return nil
}

func (s *DeEscalationStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]domain.DeEscalationTurn, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT id, session_id, user_text, prompt_text, sentiment_score, calm_words, aggressive_words, created_at
		 FROM deescalation_turns WHERE session_id = $1 ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, upstream(err, "deescalation store: list turns")
	}
	defer rows.Close()

	turns := []domain.DeEscalationTurn{}
	for rows.Next() {
		var t domain.DeEscalationTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserText, &t.PromptText, &t.Sentiment.Score,
			&t.Sentiment.CalmWords, &t.Sentiment.AggressiveWords, &t.CreatedAt); err != nil {
			return nil, upstream(err, "deescalation store: scan turn")
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "deescalation store: list turns")
	}
	return turns, nil
}

func (s *DeEscalationStore) ListCompleted(ctx context.Context, ownerID uuid.UUID) ([]domain.DeEscalationSession, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT `+sessionColumns+` FROM deescalation_sessions
		 WHERE owner_id = $1 AND completed = true ORDER BY completed_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, upstream(err, "deescalation store: list completed")
	}
	defer rows.Close()

	sessions := []domain.DeEscalationSession{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, upstream(err, "deescalation store: scan session")
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "deescalation store: list completed")
	}
	return sessions, nil
}
