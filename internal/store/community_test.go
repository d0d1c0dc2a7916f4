package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

func TestCommunityStore_AddMemberDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	m := &domain.CommunityMember{CommunityID: uuid.New(), UserID: uuid.New(), Role: domain.RoleMember}
	mock.ExpectQuery("INSERT INTO community_members").
		WithArgs(m.CommunityID, m.UserID, "member").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = NewCommunityStore(mock).AddMember(context.Background(), m)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityStore_GetByIDForUpdate(t *testing.T) {
	id := uuid.New()
	cols := []string{"id", "name", "description", "creator_id", "is_locked", "invite_code",
		"max_members", "created_at", "updated_at", "count"}

	t.Run("locks the row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = $1 FOR UPDATE OF c")).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(id, "Club", "", uuid.New(), true, "ABC234", 10, now, now, 4))

		c, err := NewCommunityStore(mock).GetByIDForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 4, c.MemberCount)
		assert.True(t, c.IsLocked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("FOR UPDATE OF c").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		_, err = NewCommunityStore(mock).GetByIDForUpdate(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCommunityStore_RemoveMissingMember(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cid, uid := uuid.New(), uuid.New()
	mock.ExpectExec("DELETE FROM community_members").
		WithArgs(cid, uid).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = NewCommunityStore(mock).RemoveMember(context.Background(), cid, uid)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementStore_UnlockTwice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ua := &domain.UserAchievement{UserID: uuid.New(), AchievementID: uuid.New()}
	mock.ExpectQuery("INSERT INTO user_achievements").
		WithArgs(ua.UserID, ua.AchievementID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "unlocked_at"}).AddRow(uuid.New(), time.Now()))
	mock.ExpectQuery("INSERT INTO user_achievements").
		WithArgs(ua.UserID, ua.AchievementID).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	s := NewAchievementStore(mock)
	require.NoError(t, s.Unlock(context.Background(), ua))
	assert.ErrorIs(t, s.Unlock(context.Background(), ua), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillStore_EnsureDefaults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectExec("ON CONFLICT \\(user_id, skill_name\\) DO NOTHING").
		WithArgs(userID,
			[]string{"Steel-manning", "De-escalation", "Fact-checking", "Cognitive Flex"},
			[]string{"#4CAF50", "#2196F3", "#FFC107", "#9C27B0"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 4))

	require.NoError(t, NewSkillStore(mock).EnsureDefaults(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
