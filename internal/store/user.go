package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO users (username, api_key_hash) VALUES ($1, $2)
		 RETURNING id, created_at`,
		u.Username, u.APIKeyHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return upstream(err, "user store: create")
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u := &domain.User{}
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT id, username, api_key_hash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.APIKeyHash, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "user store: get")
	}
	return u, nil
}

func (s *UserStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.User, error) {
	u := &domain.User{}
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT id, username, api_key_hash, created_at FROM users WHERE api_key_hash = $1`,
		apiKeyHash,
	).Scan(&u.ID, &u.Username, &u.APIKeyHash, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "user store: get by key")
	}
	return u, nil
}
