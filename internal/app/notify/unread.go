package notify

import (
	"context"
)

// UnreadBroadcastCount returns how many broadcasts userID has not read:
// the broadcast total minus the user's read receipts, never below zero.
// Receipts are removed with their broadcast, so each one counts a distinct
// live notification.
func (s *Service) UnreadBroadcastCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, validationError("user id is required")
	}

	total, err := s.broadcasts.Count(ctx)
	if err != nil {
		return 0, storeError("count broadcasts", err)
	}
	if total == 0 {
		return 0, nil
	}

	read, err := s.receipts.CountRead(ctx, userID)
	if err != nil {
		return 0, storeError("count receipts", err)
	}
	if read >= total {
		return 0, nil
	}
	return total - read, nil
}

// UnreadMessageCount returns how many messages addressed to the organizer
// linked to identityID are still unread by them.
func (s *Service) UnreadMessageCount(ctx context.Context, identityID string) (int64, error) {
	org, err := s.ResolveOrganizer(ctx, identityID)
	if err != nil {
		return 0, err
	}
	n, err := s.messages.CountUnreadFor(ctx, org.ID)
	if err != nil {
		return 0, storeError("count unread messages", err)
	}
	return n, nil
}
