package domain

import (
	"time"

	"github.com/google/uuid"
)

type CommunityRole string

const (
	RoleCreator CommunityRole = "creator"
	RoleAdmin   CommunityRole = "admin"
	RoleMember  CommunityRole = "member"
)

const (
	DefaultMaxMembers   = 100
	DefaultInviteDays   = 7
	CommunityCodeLength = 6
	InviteCodeLength    = 8
)

// Valid reports whether r is a known role.
func (r CommunityRole) Valid() bool {
	switch r {
	case RoleCreator, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether r may edit the community and its members.
func (r CommunityRole) CanManage() bool {
	return r == RoleCreator || r == RoleAdmin
}

// Community groups users around shared predictions and debate rings. A
// locked community is only joinable with a live invite.
type Community struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatorID   uuid.UUID     `json:"creator_id"`
	IsLocked    bool          `json:"is_locked"`
	InviteCode  string        `json:"invite_code,omitempty"`
	MaxMembers  int           `json:"max_members"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	MemberCount int           `json:"member_count"`
	UserRole    CommunityRole `json:"user_role,omitempty"`
}

type CommunityMember struct {
	ID          uuid.UUID     `json:"id"`
	CommunityID uuid.UUID     `json:"community_id"`
	UserID      uuid.UUID     `json:"user_id"`
	Username    string        `json:"username"`
	Role        CommunityRole `json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`
}

type CommunityInvite struct {
	ID          uuid.UUID  `json:"id"`
	CommunityID uuid.UUID  `json:"community_id"`
	InviteCode  string     `json:"invite_code"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxUses     *int       `json:"max_uses,omitempty"`
	CurrentUses int        `json:"current_uses"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Usable reports whether the invite can admit one more member at now.
func (i *CommunityInvite) Usable(now time.Time) bool {
	if i.ExpiresAt != nil && !now.Before(*i.ExpiresAt) {
		return false
	}
	return i.MaxUses == nil || i.CurrentUses < *i.MaxUses
}

// CommunityUpdate carries the fields to change; nil fields are left alone.
type CommunityUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsLocked    *bool   `json:"is_locked,omitempty"`
	MaxMembers  *int    `json:"max_members,omitempty"`
}

func (u CommunityUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.IsLocked == nil && u.MaxMembers == nil
}
