// internal/app/store/receipts/receiptstore.go
package receiptstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/noticeboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the notification_receipts collection.
const Collection = "notification_receipts"

// ErrNotFound is returned when no receipt exists for a (notification, user) pair.
var ErrNotFound = errors.New("notification receipt not found")

// Store tracks which users have read which broadcasts.
//
// Rows are created lazily on the first mark-read. The unique index on
// (notification_id, user_id) (see system/indexes) keeps at most one row per
// pair; every write here relies on it.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// unreadFilter matches the receipt for (notificationID, userID) only while it
// has no read_at. Once read, the filter stops matching, the upsert attempts an
// insert and the unique index rejects it. That rejection means "already read".
func unreadFilter(notificationID primitive.ObjectID, userID string) bson.M {
	return bson.M{
		"notification_id": notificationID,
		"user_id":         userID,
		"read_at":         nil,
	}
}

func markReadUpdate(at time.Time) bson.M {
	return bson.M{
		"$set":         bson.M{"read_at": at},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
}

// MarkRead records that userID read notificationID at the given time.
// It is idempotent: calls after the first leave the original read_at in place
// and return nil, including when several calls race.
func (s *Store) MarkRead(ctx context.Context, notificationID primitive.ObjectID, userID string, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		unreadFilter(notificationID, userID),
		markReadUpdate(at),
		options.Update().SetUpsert(true))
	if err != nil && !wafflemongo.IsDup(err) {
		return err
	}
	return nil
}

// MarkManyRead marks every notification in notificationIDs read for userID in
// one unordered bulk write. The individual upserts are independent: a failure
// may leave some applied, and retrying is safe. Returns how many receipts were
// newly marked read.
func (s *Store) MarkManyRead(ctx context.Context, notificationIDs []primitive.ObjectID, userID string, at time.Time) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(unreadFilter(id, userID)).
			SetUpdate(markReadUpdate(at)).
			SetUpsert(true))
	}

	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil && !onlyDuplicateKeys(err) {
		return 0, err
	}
	if res == nil {
		return 0, nil
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

// onlyDuplicateKeys reports whether a bulk write failed solely because some
// receipts were already read.
func onlyDuplicateKeys(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return false
	}
	if bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}

// Get returns the receipt for (notificationID, userID), or ErrNotFound.
func (s *Store) Get(ctx context.Context, notificationID primitive.ObjectID, userID string) (models.NotificationReceipt, error) {
	var r models.NotificationReceipt
	err := s.c.FindOne(ctx, bson.M{"notification_id": notificationID, "user_id": userID}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.NotificationReceipt{}, ErrNotFound
	}
	if err != nil {
		return models.NotificationReceipt{}, err
	}
	return r, nil
}

// CountRead returns how many receipts userID holds with a read_at set.
func (s *Store) CountRead(ctx context.Context, userID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"read_at": bson.M{"$ne": nil},
	})
}

// ReadNotificationIDs returns the subset of notificationIDs that userID has read.
func (s *Store) ReadNotificationIDs(ctx context.Context, userID string, notificationIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(notificationIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"user_id":         userID,
		"notification_id": bson.M{"$in": notificationIDs},
		"read_at":         bson.M{"$ne": nil},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"notification_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			NotificationID primitive.ObjectID `bson:"notification_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, row.NotificationID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByNotification removes every receipt for a notification.
func (s *Store) DeleteByNotification(ctx context.Context, notificationID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"notification_id": notificationID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteOrphans removes receipts whose notification is not in liveIDs.
// Only receipts created before the given time are considered, so a receipt
// written for a broadcast newer than the liveIDs snapshot survives.
// An empty liveIDs removes every such receipt.
func (s *Store) DeleteOrphans(ctx context.Context, liveIDs []primitive.ObjectID, before time.Time) (int64, error) {
	if liveIDs == nil {
		liveIDs = []primitive.ObjectID{}
	}
	filter := bson.M{
		"_id":             bson.M{"$lt": primitive.NewObjectIDFromTimestamp(before)},
		"notification_id": bson.M{"$nin": liveIDs},
	}
	res, err := s.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
