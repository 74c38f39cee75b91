// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/noticeboard/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections (if missing) and attaches JSON-Schema
// validators. On servers without collMod/validator support (some DocumentDB
// versions) the validator is logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("broadcast_notifications", broadcastsSchema())
	ensure("notification_receipts", receiptsSchema())
	ensure("messages", messagesSchema())
	ensure("organizers", organizersSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// ensureCollection idempotently makes sure name exists. ListCollectionNames
// is consulted first so the log only says "created" when it was.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		zap.L().Info("collection exists", zap.String("collection", name))
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		// Lost a race with another instance, or a prior run.
		if isNamespaceExists(err) {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandMatches(err error, codes []int32, fragments ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	s := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// NamespaceExists (48).
func isNamespaceExists(err error) bool {
	return commandMatches(err, []int32{48}, "already exists", "namespace exists")
}

// CommandNotFound (59) or CommandNotSupported/NotImplemented (115).
func isUnsupported(err error) bool {
	return commandMatches(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func authorSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"properties": bson.M{
			"identity": bson.M{"bsonType": "string"},
			"email":    bson.M{"bsonType": "string"},
		},
	}
}

func broadcastsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"body", "created_at"},
			"properties": bson.M{
				"title":      bson.M{"bsonType": "string", "maxLength": models.MessageMaxTitle},
				"body":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.BroadcastMaxBody, "pattern": ".*\\S.*"},
				"created_by": authorSchema(),
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func receiptsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"notification_id", "user_id"},
			"properties": bson.M{
				"notification_id": bson.M{"bsonType": "objectId"},
				"user_id":         nonBlank,
				"read_at":         bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func messagesSchema() bson.M {
	types := bson.A{}
	for _, t := range models.MessageTypes {
		types = append(types, string(t))
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"type", "body", "recipients", "created_at"},
			"properties": bson.M{
				"type":  bson.M{"enum": types},
				"title": bson.M{"bsonType": "string", "maxLength": models.MessageMaxTitle},
				"body":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.MessageMaxBody, "pattern": ".*\\S.*"},
				"recipients": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"organizer_id", "read"},
						"properties": bson.M{
							"organizer_id": bson.M{"bsonType": "objectId"},
							"read":         bson.M{"bsonType": "bool"},
							"read_at":      bson.M{"bsonType": bson.A{"date", "null"}},
						},
					},
				},
				"created_by": authorSchema(),
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func organizersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"identity_id", "name", "status"},
			"properties": bson.M{
				"identity_id": nonBlank,
				"name":        nonBlank,
				"email":       bson.M{"bsonType": "string"},
				"status":      bson.M{"enum": bson.A{models.OrganizerActive, models.OrganizerDisabled}},
			},
		},
	}
}
