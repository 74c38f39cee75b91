// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageType distinguishes how a message was addressed.
type MessageType string

const (
	// MessageBroadcast went to every active organizer. A BroadcastNotification
	// with the same content was written alongside it.
	MessageBroadcast MessageType = "broadcast"
	// MessageIndividual went to an explicit list of organizers.
	MessageIndividual MessageType = "individual"
	// MessageAdmin has no recipients and only shows up in the admin history
	// (bug reports, feature requests).
	MessageAdmin MessageType = "admin"
)

// MessageTypes lists every valid type, in display order.
var MessageTypes = []MessageType{MessageBroadcast, MessageIndividual, MessageAdmin}

const (
	MessageMaxTitle = 120
	MessageMaxBody  = 5000
)

// Message is an admin-to-organizer communication. Each addressed organizer
// appears once in Recipients with its own read state.
type Message struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Type       MessageType        `bson:"type" json:"type"`
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	Body       string             `bson:"body" json:"body"`
	Recipients []MessageRecipient `bson:"recipients" json:"recipients"`
	CreatedBy  Author             `bson:"created_by" json:"created_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// MessageRecipient is embedded in Message. Read and ReadAt only move forward.
type MessageRecipient struct {
	OrganizerID primitive.ObjectID `bson:"organizer_id" json:"organizer_id"`
	Read        bool               `bson:"read" json:"read"`
	ReadAt      *time.Time         `bson:"read_at" json:"read_at"`
}

// Recipient returns the entry addressed to organizerID, if any.
func (m Message) Recipient(organizerID primitive.ObjectID) (MessageRecipient, bool) {
	for _, r := range m.Recipients {
		if r.OrganizerID == organizerID {
			return r, true
		}
	}
	return MessageRecipient{}, false
}

// ReadCount returns how many recipients have read the message.
func (m Message) ReadCount() int {
	n := 0
	for _, r := range m.Recipients {
		if r.Read {
			n++
		}
	}
	return n
}
