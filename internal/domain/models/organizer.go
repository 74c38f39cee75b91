// internal/domain/models/organizer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrganizerActive   = "active"
	OrganizerDisabled = "disabled"
)

// Organizer is a directory entry for someone who can receive targeted
// messages. IdentityID links it to the identity provider's stable user id.
type Organizer struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	IdentityID string             `bson:"identity_id" json:"identity_id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email,omitempty" json:"email,omitempty"`
	Status     string             `bson:"status" json:"status"` // active | disabled
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
