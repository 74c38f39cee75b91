// internal/domain/models/broadcast.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BroadcastMaxBody is the longest body a broadcast notification may carry.
const BroadcastMaxBody = 2000

// BroadcastNotification is a system-wide notice visible to every user.
//
// It holds content only. Read state lives in NotificationReceipt rows that are
// created lazily, so sending a broadcast never writes per-user documents.
type BroadcastNotification struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Body      string             `bson:"body" json:"body"`
	CreatedBy Author             `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
