package notify

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedItem is a broadcast as seen by one reader.
type FeedItem struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title,omitempty"`
	Body      string             `json:"body"`
	CreatedAt time.Time          `json:"created_at"`
	IsRead    bool               `json:"is_read"`
}

// ListBroadcasts returns the newest broadcasts, newest first. limit <= 0
// selects the configured default; larger values are capped at MaxFeedLimit.
// With an empty userID every item is unread.
func (s *Service) ListBroadcasts(ctx context.Context, userID string, limit int) ([]FeedItem, error) {
	limit = clamp(limit, s.feedDefault, MaxFeedLimit)

	rows, err := s.broadcasts.ListRecent(ctx, int64(limit))
	if err != nil {
		return nil, storeError("list broadcasts", err)
	}

	items := make([]FeedItem, 0, len(rows))
	for _, b := range rows {
		items = append(items, FeedItem{
			ID:        b.ID,
			Title:     b.Title,
			Body:      b.Body,
			CreatedAt: b.CreatedAt,
		})
	}
	if userID == "" || len(items) == 0 {
		return items, nil
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	readIDs, err := s.receipts.ReadNotificationIDs(ctx, userID, ids)
	if err != nil {
		return nil, storeError("load receipts", err)
	}

	read := make(map[primitive.ObjectID]bool, len(readIDs))
	for _, id := range readIDs {
		read[id] = true
	}
	for i := range items {
		items[i].IsRead = read[items[i].ID]
	}
	return items, nil
}
