package notify

import (
	"context"
	"errors"
	"time"

	messagestore "github.com/dalemusser/noticeboard/internal/app/store/messages"
	"go.uber.org/zap"
)

// ReadState is a recipient's read state on one message.
type ReadState struct {
	Read   bool       `json:"read"`
	ReadAt *time.Time `json:"read_at"`
}

// MarkBroadcastRead records that userID read the broadcast. Repeated and
// concurrent calls leave a single receipt with the first read time.
func (s *Service) MarkBroadcastRead(ctx context.Context, notificationID, userID string) error {
	id, err := parseID(notificationID, "notification id")
	if err != nil {
		return err
	}
	if userID == "" {
		return validationError("user id is required")
	}

	exists, err := s.broadcasts.Exists(ctx, id)
	if err != nil {
		return storeError("load broadcast", err)
	}
	if !exists {
		return notFoundError("broadcast notification")
	}

	if err := s.receipts.MarkRead(ctx, id, userID, s.now()); err != nil {
		return storeError("mark broadcast read", err)
	}
	return nil
}

// MarkAllBroadcastsRead marks every existing broadcast read for userID in
// one batch of independent upserts. A failed batch may be partly applied;
// retrying is safe. Returns how many receipts were newly marked.
func (s *Service) MarkAllBroadcastsRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, validationError("user id is required")
	}

	ids, err := s.broadcasts.IDs(ctx)
	if err != nil {
		return 0, storeError("list broadcast ids", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	n, err := s.receipts.MarkManyRead(ctx, ids, userID, s.now())
	if err != nil {
		s.log.Warn("mark all broadcasts read failed",
			zap.String("user_id", userID),
			zap.Int("broadcasts", len(ids)),
			zap.Error(err))
		return 0, storeError("mark all broadcasts read", err)
	}
	return n, nil
}

// MarkMessageRead marks a message read for the organizer linked to
// identityID and returns the resulting read state. An entry that is already
// read is returned as is.
func (s *Service) MarkMessageRead(ctx context.Context, messageID, identityID string) (ReadState, error) {
	id, err := parseID(messageID, "message id")
	if err != nil {
		return ReadState{}, err
	}

	org, err := s.ResolveOrganizer(ctx, identityID)
	if err != nil {
		return ReadState{}, err
	}

	msg, err := s.messages.GetByID(ctx, id)
	if errors.Is(err, messagestore.ErrNotFound) {
		return ReadState{}, notFoundError("message")
	}
	if err != nil {
		return ReadState{}, storeError("load message", err)
	}

	entry, ok := msg.Recipient(org.ID)
	if !ok {
		return ReadState{}, forbiddenError("message is not addressed to this organizer")
	}
	if entry.Read {
		return ReadState{Read: true, ReadAt: entry.ReadAt}, nil
	}

	at := s.now()
	changed, err := s.messages.MarkRecipientRead(ctx, id, org.ID, at)
	if err != nil {
		return ReadState{}, storeError("mark message read", err)
	}
	if changed {
		return ReadState{Read: true, ReadAt: &at}, nil
	}

	// Lost a race with another request for the same entry; report what it stored.
	msg, err = s.messages.GetByID(ctx, id)
	if err != nil {
		return ReadState{}, storeError("reload message", err)
	}
	entry, _ = msg.Recipient(org.ID)
	return ReadState{Read: entry.Read, ReadAt: entry.ReadAt}, nil
}
