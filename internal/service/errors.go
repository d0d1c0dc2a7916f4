package service

import (
	"errors"
	"fmt"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/store"
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrProfileNotFound    = fmt.Errorf("profile %w", domain.ErrNotFound)
	ErrBeliefNotFound     = fmt.Errorf("belief %w", domain.ErrNotFound)
	ErrPredictionNotFound = fmt.Errorf("prediction %w", domain.ErrNotFound)
	ErrSessionNotFound    = fmt.Errorf("de-escalation session %w", domain.ErrNotFound)
	ErrDebateNotFound     = fmt.Errorf("debate %w", domain.ErrNotFound)
	ErrPersonaNotFound    = fmt.Errorf("persona %w", domain.ErrNotFound)
	ErrRingNotFound       = fmt.Errorf("debate ring %w", domain.ErrNotFound)
	ErrNotParticipant     = fmt.Errorf("ring participant %w", domain.ErrNotFound)
	ErrAchievementUnknown = fmt.Errorf("achievement %w", domain.ErrNotFound)
	ErrCommunityNotFound  = fmt.Errorf("community %w", domain.ErrNotFound)
	ErrNotMember          = fmt.Errorf("community member %w", domain.ErrNotFound)

	ErrUsernameTaken = fmt.Errorf("%w: username already taken", domain.ErrConflict)
	ErrDebateEnded   = fmt.Errorf("%w: debate has ended", domain.ErrConflict)
	ErrRingClosed    = fmt.Errorf("%w: debate ring is not active", domain.ErrConflict)
	ErrRingFull      = fmt.Errorf("%w: debate ring is full", domain.ErrInvalidInput)

	ErrAchievementUnlocked = fmt.Errorf("%w: achievement already unlocked", domain.ErrConflict)
	ErrAlreadyMember       = fmt.Errorf("%w: already a community member", domain.ErrConflict)
	ErrCommunityFull       = fmt.Errorf("%w: community is full", domain.ErrInvalidInput)
	ErrInviteRequired      = fmt.Errorf("%w: community is locked, a valid invite code is required", domain.ErrInvalidInput)
	ErrInviteExpired       = fmt.Errorf("%w: invite is expired or used up", domain.ErrInvalidInput)
	ErrNotCommunityAdmin   = fmt.Errorf("%w: only the creator or an admin may do this", domain.ErrForbidden)
	ErrNotRingCreator      = fmt.Errorf("%w: only the ring creator may do this", domain.ErrForbidden)
	ErrCreatorCannotLeave  = fmt.Errorf("%w: the creator cannot leave, delete the community instead", domain.ErrConflict)

	errRealtimeDisabled = errors.New("realtime delivery is not running")
)

// orNotFound replaces a store miss with the entity-specific error.
func orNotFound(err error, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return err
}
