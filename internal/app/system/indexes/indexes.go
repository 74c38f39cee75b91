// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called from EnsureSchema at startup. Each ensure* function is
idempotent. Errors are aggregated so every problem is visible and startup can
fail fast.

The unique index on notification_receipts is load-bearing: mark-read relies on
it to keep a single receipt per (notification, user) under concurrent requests.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureBroadcasts(ctx, db); err != nil {
		problems = append(problems, "broadcast_notifications: "+err.Error())
	}
	if err := ensureReceipts(ctx, db); err != nil {
		problems = append(problems, "notification_receipts: "+err.Error())
	}
	if err := ensureMessages(ctx, db); err != nil {
		problems = append(problems, "messages: "+err.Error())
	}
	if err := ensureOrganizers(ctx, db); err != nil {
		problems = append(problems, "organizers: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile helper                                                            */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes coll carry every index in want. An existing index with
// the same key pattern is reused when its uniqueness matches; a name or
// uniqueness mismatch is fixed by dropping and recreating it.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, want []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A missing namespace lists as an error on some servers; treat it as empty.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range want {
		name := ""
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)))

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == isUnique(unique) && (name == "" || ex.Name == name) {
				log.Info("reusing existing index", zap.String("took", time.Since(start).String()))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			if isDuplicateKeyErr(err) && isUnique(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		log.Info("index ensured", zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate detector (works across vendors).
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureBroadcasts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("broadcast_notifications")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Feed: newest first with a stable tiebreak
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_broadcasts_createdat_id"),
		},
	})
}

func ensureReceipts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("notification_receipts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// 1) One receipt per (notification, user)
		{
			Keys:    bson.D{{Key: "notification_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_receipts_notification_user"),
		},
		// 2) Unread counts and feed lookups are per user
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "read_at", Value: 1}},
			Options: options.Index().SetName("idx_receipts_user_readat"),
		},
	})
}

func ensureMessages(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("messages")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// 1) Admin history: newest first
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_messages_createdat_id"),
		},
		// 2) Organizer inbox: multikey on the embedded recipient id
		{
			Keys:    bson.D{{Key: "recipients.organizer_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_messages_recipient_createdat"),
		},
	})
}

func ensureOrganizers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("organizers")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// 1) Identity lookup; one organizer per identity
		{
			Keys:    bson.D{{Key: "identity_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_organizers_identity"),
		},
		// 2) Broadcast fan-out lists active organizers
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_organizers_status"),
		},
	})
}
