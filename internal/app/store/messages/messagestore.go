// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/noticeboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the messages collection.
const Collection = "messages"

// OrganizerListCap bounds how many messages an organizer's inbox returns.
const OrganizerListCap = 200

// ErrNotFound is returned when a message does not exist.
var ErrNotFound = errors.New("message not found")

// ErrBodyRequired is returned by Create for a blank body.
var ErrBodyRequired = errors.New("message body is required")

// Summary is a message as shown in the admin history: content plus
// aggregate recipient counts, without the recipient list itself.
type Summary struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Type            models.MessageType `bson:"type" json:"type"`
	Title           string             `bson:"title,omitempty" json:"title,omitempty"`
	Body            string             `bson:"body" json:"body"`
	CreatedBy       models.Author      `bson:"created_by" json:"created_by"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	RecipientsCount int                `bson:"recipients_count" json:"recipients_count"`
	ReadCount       int                `bson:"read_count" json:"read_count"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts a message, assigning the ID and CreatedAt when unset.
// Recipients is stored as an empty array rather than null.
func (s *Store) Create(ctx context.Context, m models.Message) (models.Message, error) {
	if strings.TrimSpace(m.Body) == "" {
		return models.Message{}, ErrBodyRequired
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Recipients == nil {
		m.Recipients = []models.MessageRecipient{}
	}

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// GetByID returns a message with its full recipient list, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Message, error) {
	var m models.Message
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Message{}, ErrNotFound
	}
	if err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListForOrganizer returns messages addressed to organizerID, newest first.
// Each result carries only that organizer's recipient entry.
func (s *Store) ListForOrganizer(ctx context.Context, organizerID primitive.ObjectID, limit int64) ([]models.Message, error) {
	if limit <= 0 || limit > OrganizerListCap {
		limit = OrganizerListCap
	}

	find := options.Find().
		SetSort(newestFirst).
		SetLimit(limit).
		SetProjection(bson.M{
			"type":       1,
			"title":      1,
			"body":       1,
			"created_by": 1,
			"created_at": 1,
			"recipients": bson.M{"$elemMatch": bson.M{"organizer_id": organizerID}},
		})

	cur, err := s.c.Find(ctx, bson.M{"recipients.organizer_id": organizerID}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRecipientRead flips the organizer's entry to read. The update is
// positional and only matches while that entry is still unread, so it never
// rewrites other recipients and never moves read_at. Returns false when
// nothing changed (already read, not addressed, or no such message).
func (s *Store) MarkRecipientRead(ctx context.Context, messageID, organizerID primitive.ObjectID, at time.Time) (bool, error) {
	filter := bson.M{
		"_id": messageID,
		"recipients": bson.M{"$elemMatch": bson.M{
			"organizer_id": organizerID,
			"read":         false,
		}},
	}
	update := bson.M{"$set": bson.M{
		"recipients.$.read":    true,
		"recipients.$.read_at": at,
	}}

	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// CountUnreadFor returns how many messages addressed to organizerID are
// still unread by them. An organizer appears at most once per message.
func (s *Store) CountUnreadFor(ctx context.Context, organizerID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"recipients": bson.M{"$elemMatch": bson.M{
			"organizer_id": organizerID,
			"read":         false,
		}},
	})
}

// History returns one page of every message, newest first, with recipient
// and read counts computed server-side.
func (s *Store) History(ctx context.Context, skip, limit int64) ([]Summary, error) {
	recipients := bson.M{"$ifNull": bson.A{"$recipients", bson.A{}}}

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"type":             1,
			"title":            1,
			"body":             1,
			"created_by":       1,
			"created_at":       1,
			"recipients_count": bson.M{"$size": recipients},
			"read_count": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": recipients,
				"as":    "r",
				"cond":  bson.M{"$eq": bson.A{"$$r.read", true}},
			}}},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of messages of every type.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Delete removes a message by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
