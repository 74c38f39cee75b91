// internal/app/store/broadcasts/broadcaststore.go
package broadcaststore

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

// Collection is the name of the broadcast_notifications collection.
const Collection = "broadcast_notifications"

// ErrNotFound is returned when a broadcast does not exist.
var ErrNotFound = errors.New("broadcast notification not found")

// ErrBodyRequired is returned by Create for a blank body.
var ErrBodyRequired = errors.New("broadcast body is required")

// Store provides access to broadcast notification content. It knows nothing
// about who has read what; see the receipts store for that.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a broadcast, assigning the ID and CreatedAt when unset.
func (s *Store) Create(ctx context.Context, b models.BroadcastNotification) (models.BroadcastNotification, error) {
	if strings.TrimSpace(b.Body) == "" {
		return models.BroadcastNotification{}, ErrBodyRequired
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.BroadcastNotification{}, err
	}
	return b, nil
}

// GetByID returns a broadcast by ID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.BroadcastNotification, error) {
	var b models.BroadcastNotification
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.BroadcastNotification{}, ErrNotFound
	}
	if err != nil {
		return models.BroadcastNotification{}, err
	}
	return b, nil
}

// Exists reports whether a broadcast with the given ID exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListRecent returns up to limit broadcasts, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]models.BroadcastNotification, error) {
	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.BroadcastNotification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of broadcasts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// IDs returns the IDs of every broadcast.
func (s *Store) IDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes a broadcast by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
