// internal/app/store/organizers/organizerstore.go
package organizerstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/noticeboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the organizers collection.
const Collection = "organizers"

var (
	ErrNotFound           = errors.New("organizer not found")
	ErrDuplicateIdentity  = errors.New("an organizer is already linked to this identity")
	ErrIdentityIDRequired = errors.New("identity_id is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Create(ctx context.Context, org models.Organizer) (models.Organizer, error) {
	org.IdentityID = strings.TrimSpace(org.IdentityID)
	if org.IdentityID == "" {
		return models.Organizer{}, ErrIdentityIDRequired
	}

	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	if org.Status == "" {
		org.Status = models.OrganizerActive
	}
	org.CreatedAt = now
	org.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organizer{}, ErrDuplicateIdentity
		}
		return models.Organizer{}, err
	}
	return org, nil
}

// GetByIdentity returns the organizer linked to identityID, or ErrNotFound.
func (s *Store) GetByIdentity(ctx context.Context, identityID string) (models.Organizer, error) {
	var org models.Organizer
	err := s.c.FindOne(ctx, bson.M{"identity_id": identityID}).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return models.Organizer{}, ErrNotFound
	}
	if err != nil {
		return models.Organizer{}, err
	}
	return org, nil
}

// ListActiveIDs returns the IDs of every active organizer. Broadcast sends
// address exactly this set.
func (s *Store) ListActiveIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	find := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.c.Find(ctx, bson.M{"status": models.OrganizerActive}, find)
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

// SetStatus changes an organizer's status and refreshes UpdatedAt.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
