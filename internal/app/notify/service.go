// Package notify implements broadcast notifications and targeted
// admin-to-organizer messages: delivery, read tracking, unread counts and
// history.
//
// Broadcasts and messages are stored in two independent shapes. A broadcast
// has one BroadcastNotification and a lazily created receipt per reader;
// a message embeds its recipients with their read state. The Service never
// creates per-user rows at send time.
//
// The Service holds no mutable state. Concurrent read-marking is resolved in
// storage (unique-key upserts for receipts, guarded positional updates for
// message recipients). Callers impose timeouts through ctx.
package notify

import (
	"context"
	"time"

	broadcaststore "github.com/dalemusser/noticeboard/internal/app/store/broadcasts"
	messagestore "github.com/dalemusser/noticeboard/internal/app/store/messages"
	organizerstore "github.com/dalemusser/noticeboard/internal/app/store/organizers"
	receiptstore "github.com/dalemusser/noticeboard/internal/app/store/receipts"
	"github.com/dalemusser/noticeboard/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	DefaultFeedLimit       = 20
	MaxFeedLimit           = 100
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 100
)

// BroadcastStore holds broadcast notification content.
type BroadcastStore interface {
	Create(ctx context.Context, b models.BroadcastNotification) (models.BroadcastNotification, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	ListRecent(ctx context.Context, limit int64) ([]models.BroadcastNotification, error)
	Count(ctx context.Context) (int64, error)
	IDs(ctx context.Context) ([]primitive.ObjectID, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// ReceiptStore holds per-(notification, user) read markers.
type ReceiptStore interface {
	MarkRead(ctx context.Context, notificationID primitive.ObjectID, userID string, at time.Time) error
	MarkManyRead(ctx context.Context, notificationIDs []primitive.ObjectID, userID string, at time.Time) (int64, error)
	CountRead(ctx context.Context, userID string) (int64, error)
	ReadNotificationIDs(ctx context.Context, userID string, notificationIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByNotification(ctx context.Context, notificationID primitive.ObjectID) (int64, error)
	DeleteOrphans(ctx context.Context, liveIDs []primitive.ObjectID, before time.Time) (int64, error)
}

// MessageStore holds messages with their embedded recipients.
// GetByID must return messagestore.ErrNotFound for a missing message.
type MessageStore interface {
	Create(ctx context.Context, m models.Message) (models.Message, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Message, error)
	ListForOrganizer(ctx context.Context, organizerID primitive.ObjectID, limit int64) ([]models.Message, error)
	MarkRecipientRead(ctx context.Context, messageID, organizerID primitive.ObjectID, at time.Time) (bool, error)
	CountUnreadFor(ctx context.Context, organizerID primitive.ObjectID) (int64, error)
	History(ctx context.Context, skip, limit int64) ([]messagestore.Summary, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// OrganizerDirectory resolves organizers. GetByIdentity must return
// organizerstore.ErrNotFound when no organizer is linked to the identity.
type OrganizerDirectory interface {
	ListActiveIDs(ctx context.Context) ([]primitive.ObjectID, error)
	GetByIdentity(ctx context.Context, identityID string) (models.Organizer, error)
}

// Stores bundles the Service's persistence collaborators.
type Stores struct {
	Broadcasts BroadcastStore
	Receipts   ReceiptStore
	Messages   MessageStore
	Organizers OrganizerDirectory
}

// Config tunes list sizes. Zero values select the defaults.
type Config struct {
	FeedDefaultLimit int
	HistoryPageSize  int
}

type Service struct {
	broadcasts BroadcastStore
	receipts   ReceiptStore
	messages   MessageStore
	organizers OrganizerDirectory
	log        *zap.Logger

	feedDefault int
	historySize int

	now    func() time.Time
	sendID func() string
}

func New(st Stores, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		broadcasts:  st.Broadcasts,
		receipts:    st.Receipts,
		messages:    st.Messages,
		organizers:  st.Organizers,
		log:         logger,
		feedDefault: clamp(cfg.FeedDefaultLimit, DefaultFeedLimit, MaxFeedLimit),
		historySize: clamp(cfg.HistoryPageSize, DefaultHistoryPageSize, MaxHistoryPageSize),
		now:         func() time.Time { return time.Now().UTC() },
		sendID:      func() string { return uuid.NewString() },
	}
}

// MongoStores returns the Mongo-backed stores over db.
func MongoStores(db *mongo.Database) Stores {
	return Stores{
		Broadcasts: broadcaststore.New(db),
		Receipts:   receiptstore.New(db),
		Messages:   messagestore.New(db),
		Organizers: organizerstore.New(db),
	}
}

// clamp returns n bounded to 1..ceiling, or def when n is not positive.
func clamp(n, def, ceiling int) int {
	if n <= 0 {
		return def
	}
	if n > ceiling {
		return ceiling
	}
	return n
}

// parseID parses a 24-hex document id, reporting a validation error naming what.
func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, validationError("invalid " + what)
	}
	return id, nil
}
