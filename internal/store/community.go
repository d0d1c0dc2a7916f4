package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type CommunityStore struct {
	db DB
}

func NewCommunityStore(db DB) *CommunityStore {
	return &CommunityStore{db: db}
}

const communitySelect = `SELECT c.id, c.name, c.description, c.creator_id, c.is_locked, c.invite_code,
	c.max_members, c.created_at, c.updated_at,
	(SELECT count(*) FROM community_members m WHERE m.community_id = c.id)
	FROM communities c`

func scanCommunity(row pgx.Row, extra ...any) (*domain.Community, error) {
	c := &domain.Community{}
	dest := append([]any{&c.ID, &c.Name, &c.Description, &c.CreatorID, &c.IsLocked, &c.InviteCode,
		&c.MaxMembers, &c.CreatedAt, &c.UpdatedAt, &c.MemberCount}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommunityStore) Create(ctx context.Context, c *domain.Community) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO communities (name, description, creator_id, is_locked, invite_code, max_members)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.CreatorID, c.IsLocked, c.InviteCode, c.MaxMembers,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return upstream(err, "community store: create")
	}
	return nil
}

func (s *CommunityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	c, err := scanCommunity(conn(ctx, s.db).QueryRow(ctx, communitySelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "community store: get")
	}
	return c, nil
}

func (s *CommunityStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	c, err := scanCommunity(conn(ctx, s.db).QueryRow(ctx, communitySelect+` WHERE c.id = $1 FOR UPDATE OF c`, id))
	if err != nil {
		return nil, notFoundOr(err, "community store: lock")
	}
	return c, nil
}

// ListByMember returns the user's communities with their role filled in.
func (s *CommunityStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]domain.Community, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT c.id, c.name, c.description, c.creator_id, c.is_locked, c.invite_code,
		        c.max_members, c.created_at, c.updated_at,
		        (SELECT count(*) FROM community_members m WHERE m.community_id = c.id),
		        me.role
		 FROM communities c JOIN community_members me ON me.community_id = c.id AND me.user_id = $1
		 ORDER BY me.joined_at DESC`,
		userID,
	)
	if err != nil {
		return nil, upstream(err, "community store: list by member")
	}
	defer rows.Close()

	communities := []domain.Community{}
	for rows.Next() {
		var role string
		c, err := scanCommunity(rows, &role)
		if err != nil {
			return nil, upstream(err, "community store: scan")
		}
		c.UserRole = domain.CommunityRole(role)
		communities = append(communities, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "community store: list by member")
	}
	return communities, nil
}

func (s *CommunityStore) ListUnlocked(ctx context.Context) ([]domain.Community, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		communitySelect+` WHERE c.is_locked = false ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, upstream(err, "community store: list unlocked")
	}
	defer rows.Close()

	communities := []domain.Community{}
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, upstream(err, "community store: scan")
		}
		communities = append(communities, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "community store: list unlocked")
	}
	return communities, nil
}

func (s *CommunityStore) Update(ctx context.Context, c *domain.Community) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`UPDATE communities SET name = $2, description = $3, is_locked = $4, max_members = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		c.ID, c.Name, c.Description, c.IsLocked, c.MaxMembers,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return notFoundOr(err, "community store: update")
	}
	return nil
}

func (s *CommunityStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, "community store: delete", `DELETE FROM communities WHERE id = $1`, id)
}

func (s *CommunityStore) AddMember(ctx context.Context, m *domain.CommunityMember) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO community_members (community_id, user_id, role) VALUES ($1, $2, $3)
		 RETURNING id, joined_at`,
		m.CommunityID, m.UserID, string(m.Role),
	).Scan(&m.ID, &m.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return upstream(err, "community store: add member")
	}
	return nil
}

const memberSelect = `SELECT m.id, m.community_id, m.user_id, u.username, m.role, m.joined_at
	FROM community_members m JOIN users u ON u.id = m.user_id`

func scanMember(row pgx.Row) (*domain.CommunityMember, error) {
	m := &domain.CommunityMember{}
	var role string
	if err := row.Scan(&m.ID, &m.CommunityID, &m.UserID, &m.Username, &role, &m.JoinedAt); err != nil {
		return nil, err
	}
	m.Role = domain.CommunityRole(role)
	return m, nil
}

func (s *CommunityStore) GetMember(ctx context.Context, communityID, userID uuid.UUID) (*domain.CommunityMember, error) {
	m, err := scanMember(conn(ctx, s.db).QueryRow(ctx,
		memberSelect+` WHERE m.community_id = $1 AND m.user_id = $2`, communityID, userID))
	if err != nil {
		return nil, notFoundOr(err, "community store: get member")
	}
	return m, nil
}

func (s *CommunityStore) ListMembers(ctx context.Context, communityID uuid.UUID) ([]domain.CommunityMember, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		memberSelect+` WHERE m.community_id = $1 ORDER BY m.joined_at`, communityID)
	if err != nil {
		return nil, upstream(err, "community store: list members")
	}
	defer rows.Close()

	members := []domain.CommunityMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, upstream(err, "community store: scan member")
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "community store: list members")
	}
	return members, nil
}

func (s *CommunityStore) CountMembers(ctx context.Context, communityID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT count(*) FROM community_members WHERE community_id = $1`, communityID,
	).Scan(&n)
	if err != nil {
		return 0, upstream(err, "community store: count members")
	}
	return n, nil
}

func (s *CommunityStore) UpdateMemberRole(ctx context.Context, communityID, userID uuid.UUID, role domain.CommunityRole) error {
	return s.exec(ctx, "community store: update role",
		`UPDATE community_members SET role = $3 WHERE community_id = $1 AND user_id = $2`,
		communityID, userID, string(role))
}

func (s *CommunityStore) RemoveMember(ctx context.Context, communityID, userID uuid.UUID) error {
	return s.exec(ctx, "community store: remove member",
		`DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`,
		communityID, userID)
}

const inviteColumns = `id, community_id, invite_code, created_by, expires_at, max_uses, current_uses, created_at`

func scanInvite(row pgx.Row) (*domain.CommunityInvite, error) {
	inv := &domain.CommunityInvite{}
	err := row.Scan(&inv.ID, &inv.CommunityID, &inv.InviteCode, &inv.CreatedBy, &inv.ExpiresAt,
		&inv.MaxUses, &inv.CurrentUses, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *CommunityStore) CreateInvite(ctx context.Context, inv *domain.CommunityInvite) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO community_invites (community_id, invite_code, created_by, expires_at, max_uses)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, current_uses, created_at`,
		inv.CommunityID, inv.InviteCode, inv.CreatedBy, inv.ExpiresAt, inv.MaxUses,
	).Scan(&inv.ID, &inv.CurrentUses, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return upstream(err, "community store: create invite")
	}
	return nil
}

func (s *CommunityStore) GetInvite(ctx context.Context, communityID uuid.UUID, code string) (*domain.CommunityInvite, error) {
	inv, err := scanInvite(conn(ctx, s.db).QueryRow(ctx,
		`SELECT `+inviteColumns+` FROM community_invites WHERE community_id = $1 AND invite_code = $2`,
		communityID, code))
	if err != nil {
		return nil, notFoundOr(err, "community store: get invite")
	}
	return inv, nil
}

func (s *CommunityStore) ListInvites(ctx context.Context, communityID uuid.UUID) ([]domain.CommunityInvite, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT `+inviteColumns+` FROM community_invites WHERE community_id = $1 ORDER BY created_at DESC`,
		communityID)
	if err != nil {
		return nil, upstream(err, "community store: list invites")
	}
	defer rows.Close()

	invites := []domain.CommunityInvite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, upstream(err, "community store: scan invite")
		}
		invites = append(invites, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err, "community store: list invites")
	}
	return invites, nil
}

func (s *CommunityStore) IncrementInviteUses(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, "community store: use invite",
		`UPDATE community_invites SET current_uses = current_uses + 1 WHERE id = $1`, id)
}

func (s *CommunityStore) exec(ctx context.Context, op, sql string, args ...any) error {
	tag, err := conn(ctx, s.db).Exec(ctx, sql, args...)
	if err != nil {
		return upstream(err, op)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
