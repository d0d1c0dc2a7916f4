package domain

import (
	"time"

	"github.com/google/uuid"
)

type GroupDebateStatus string

const (
	GroupDebateActive   GroupDebateStatus = "active"
	GroupDebateClosed   GroupDebateStatus = "closed"
	GroupDebateArchived GroupDebateStatus = "archived"
)

const (
	DefaultMaxParticipants = 10
	DefaultMessageLimit    = 50
)

// GroupDebate is a multi-user debate ring.
type GroupDebate struct {
	ID               uuid.UUID         `json:"id"`
	Topic            string            `json:"topic"`
	CreatedBy        uuid.UUID         `json:"created_by"`
	Status           GroupDebateStatus `json:"status"`
	MaxParticipants  int               `json:"max_participants"`
	IsAnonymous      bool              `json:"is_anonymous"`
	IsFeatured       bool              `json:"is_featured"`
	IntensityLevel   int               `json:"intensity_level"`
	Category         string            `json:"category"`
	EndsAt           *time.Time        `json:"ends_at,omitempty"`
	CommunityID      *uuid.UUID        `json:"community_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	ParticipantCount int               `json:"participant_count"`
}

// ValidGroupDebateStatus reports whether s is a known ring status.
func ValidGroupDebateStatus(s GroupDebateStatus) bool {
	switch s {
	case GroupDebateActive, GroupDebateClosed, GroupDebateArchived:
		return true
	}
	return false
}

// GroupDebateUpdate carries the ring fields to change; nil fields are left
// alone.
type GroupDebateUpdate struct {
	Topic           *string            `json:"topic,omitempty"`
	Status          *GroupDebateStatus `json:"status,omitempty"`
	MaxParticipants *int               `json:"max_participants,omitempty"`
	IsAnonymous     *bool              `json:"is_anonymous,omitempty"`
	IsFeatured      *bool              `json:"is_featured,omitempty"`
	IntensityLevel  *int               `json:"intensity_level,omitempty"`
	Category        *string            `json:"category,omitempty"`
	EndsAt          *time.Time         `json:"ends_at,omitempty"`
}

func (u GroupDebateUpdate) Empty() bool {
	return u.Topic == nil && u.Status == nil && u.MaxParticipants == nil && u.IsAnonymous == nil &&
		u.IsFeatured == nil && u.IntensityLevel == nil && u.Category == nil && u.EndsAt == nil
}

// Apply copies the set fields onto g.
func (u GroupDebateUpdate) Apply(g *GroupDebate) {
	if u.Topic != nil {
		g.Topic = *u.Topic
	}
	if u.Status != nil {
		g.Status = *u.Status
	}
	if u.MaxParticipants != nil {
		g.MaxParticipants = *u.MaxParticipants
	}
	if u.IsAnonymous != nil {
		g.IsAnonymous = *u.IsAnonymous
	}
	if u.IsFeatured != nil {
		g.IsFeatured = *u.IsFeatured
	}
	if u.IntensityLevel != nil {
		g.IntensityLevel = *u.IntensityLevel
	}
	if u.Category != nil {
		g.Category = *u.Category
	}
	if u.EndsAt != nil {
		g.EndsAt = u.EndsAt
	}
}

type GroupParticipant struct {
	ID              uuid.UUID  `json:"id"`
	DebateID        uuid.UUID  `json:"debate_id"`
	UserID          uuid.UUID  `json:"user_id"`
	AnonymousMaskID *string    `json:"anonymous_mask_id,omitempty"`
	JoinedAt        time.Time  `json:"joined_at"`
	LeftAt          *time.Time `json:"left_at,omitempty"`
}

type GroupMessage struct {
	ID         uuid.UUID  `json:"id"`
	DebateID   uuid.UUID  `json:"debate_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	SenderName string     `json:"sender_name"`
	SenderType SenderType `json:"sender_type"`
	Content    string     `json:"content"`
	ReplyToID  *uuid.UUID `json:"reply_to_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
