package notify

import (
	"context"
	"errors"
	"time"

	messagestore "github.com/dalemusser/noticeboard/internal/app/store/messages"
	organizerstore "github.com/dalemusser/noticeboard/internal/app/store/organizers"
	"github.com/dalemusser/noticeboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrganizerMessage is a message as seen by one recipient.
type OrganizerMessage struct {
	ID        primitive.ObjectID `json:"id"`
	Type      models.MessageType `json:"type"`
	Title     string             `json:"title,omitempty"`
	Body      string             `json:"body"`
	CreatedAt time.Time          `json:"created_at"`
	Read      bool               `json:"read"`
	ReadAt    *time.Time         `json:"read_at"`
}

// HistoryPage is one page of the admin message history.
type HistoryPage struct {
	Items   []messagestore.Summary `json:"items"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
	Total   int64                  `json:"total"`
	HasNext bool                   `json:"has_next"`
}

// ResolveOrganizer returns the organizer linked to identityID.
func (s *Service) ResolveOrganizer(ctx context.Context, identityID string) (models.Organizer, error) {
	if identityID == "" {
		return models.Organizer{}, validationError("identity is required")
	}
	org, err := s.organizers.GetByIdentity(ctx, identityID)
	if errors.Is(err, organizerstore.ErrNotFound) {
		return models.Organizer{}, notFoundError("organizer")
	}
	if err != nil {
		return models.Organizer{}, storeError("load organizer", err)
	}
	return org, nil
}

// ListMessagesForOrganizer returns up to 200 messages addressed to the
// organizer linked to identityID, newest first, each with that organizer's
// own read state.
func (s *Service) ListMessagesForOrganizer(ctx context.Context, identityID string) ([]OrganizerMessage, error) {
	org, err := s.ResolveOrganizer(ctx, identityID)
	if err != nil {
		return nil, err
	}

	rows, err := s.messages.ListForOrganizer(ctx, org.ID, messagestore.OrganizerListCap)
	if err != nil {
		return nil, storeError("list messages", err)
	}

	out := make([]OrganizerMessage, 0, len(rows))
	for _, m := range rows {
		entry, ok := m.Recipient(org.ID)
		if !ok {
			continue
		}
		out = append(out, OrganizerMessage{
			ID:        m.ID,
			Type:      m.Type,
			Title:     m.Title,
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
			Read:      entry.Read,
			ReadAt:    entry.ReadAt,
		})
	}
	return out, nil
}

// ListMessageHistory returns one page of every message, newest first.
// page < 1 is treated as 1; limit <= 0 selects the configured page size and
// larger values are capped at MaxHistoryPageSize.
func (s *Service) ListMessageHistory(ctx context.Context, page, limit int) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	limit = clamp(limit, s.historySize, MaxHistoryPageSize)
	skip := int64(page-1) * int64(limit)

	total, err := s.messages.Count(ctx)
	if err != nil {
		return HistoryPage{}, storeError("count messages", err)
	}

	items := []messagestore.Summary{}
	if skip < total {
		items, err = s.messages.History(ctx, skip, int64(limit))
		if err != nil {
			return HistoryPage{}, storeError("load history", err)
		}
	}

	return HistoryPage{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: skip+int64(len(items)) < total,
	}, nil
}

// DeleteMessage removes a message. A broadcast's feed entry is left alone.
func (s *Service) DeleteMessage(ctx context.Context, messageID string) error {
	id, err := parseID(messageID, "message id")
	if err != nil {
		return err
	}
	n, err := s.messages.Delete(ctx, id)
	if err != nil {
		return storeError("delete message", err)
	}
	if n == 0 {
		return notFoundError("message")
	}
	s.log.Info("message deleted", zap.String("message_id", id.Hex()))
	return nil
}

// DeleteBroadcast removes a broadcast from the feed together with its
// receipts. The admin-history message is left alone. If removing the
// receipts fails the broadcast is already gone; the orphan sweep finishes
// the job.
func (s *Service) DeleteBroadcast(ctx context.Context, notificationID string) error {
	id, err := parseID(notificationID, "notification id")
	if err != nil {
		return err
	}
	n, err := s.broadcasts.Delete(ctx, id)
	if err != nil {
		return storeError("delete broadcast", err)
	}
	if n == 0 {
		return notFoundError("broadcast notification")
	}

	removed, err := s.receipts.DeleteByNotification(ctx, id)
	if err != nil {
		s.log.Warn("broadcast deleted but receipts remain",
			zap.String("notification_id", id.Hex()),
			zap.Error(err))
		return storeError("delete receipts", err)
	}
	s.log.Info("broadcast deleted",
		zap.String("notification_id", id.Hex()),
		zap.Int64("receipts", removed))
	return nil
}

// SweepOrphanReceipts removes receipts whose broadcast no longer exists.
// Receipts written after the sweep starts are never touched.
func (s *Service) SweepOrphanReceipts(ctx context.Context) (int64, error) {
	startedAt := s.now()
	live, err := s.broadcasts.IDs(ctx)
	if err != nil {
		return 0, storeError("list broadcast ids", err)
	}
	n, err := s.receipts.DeleteOrphans(ctx, live, startedAt)
	if err != nil {
		return 0, storeError("delete orphan receipts", err)
	}
	return n, nil
}
