// internal/domain/models/receipt.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationReceipt marks that a user has read a broadcast notification.
// At most one receipt exists per (NotificationID, UserID); ReadAt is never unset.
type NotificationReceipt struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	NotificationID primitive.ObjectID `bson:"notification_id" json:"notification_id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	ReadAt         *time.Time         `bson:"read_at" json:"read_at"`
}
