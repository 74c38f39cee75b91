package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/noticeboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganizer inserts an active organizer linked to identityID.
func (f *Fixtures) CreateOrganizer(ctx context.Context, name, identityID string) models.Organizer {
	f.t.Helper()
	return f.insertOrganizer(ctx, name, identityID, models.OrganizerActive)
}

// CreateDisabledOrganizer inserts an organizer that broadcasts skip.
func (f *Fixtures) CreateDisabledOrganizer(ctx context.Context, name, identityID string) models.Organizer {
	f.t.Helper()
	return f.insertOrganizer(ctx, name, identityID, models.OrganizerDisabled)
}

func (f *Fixtures) insertOrganizer(ctx context.Context, name, identityID, status string) models.Organizer {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organizer{
		ID:         primitive.NewObjectID(),
		IdentityID: identityID,
		Name:       name,
		Email:      identityID + "@test.com",
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("organizers").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organizer: %v", err)
	}
	return org
}

// CreateBroadcast inserts a broadcast notification created at the given time.
func (f *Fixtures) CreateBroadcast(ctx context.Context, title, body string, createdAt time.Time) models.BroadcastNotification {
	f.t.Helper()

	b := models.BroadcastNotification{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Body:      body,
		CreatedBy: models.Author{Identity: "admin-1", Email: "admin@test.com"},
		CreatedAt: createdAt.UTC(),
	}
	if _, err := f.db.Collection("broadcast_notifications").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test broadcast: %v", err)
	}
	return b
}

// CreateMessage inserts a message addressed to the given organizers, all unread.
func (f *Fixtures) CreateMessage(ctx context.Context, typ models.MessageType, body string, createdAt time.Time, organizerIDs ...primitive.ObjectID) models.Message {
	f.t.Helper()

	recipients := make([]models.MessageRecipient, 0, len(organizerIDs))
	for _, id := range organizerIDs {
		recipients = append(recipients, models.MessageRecipient{OrganizerID: id})
	}
	m := models.Message{
		ID:         primitive.NewObjectID(),
		Type:       typ,
		Body:       body,
		Recipients: recipients,
		CreatedBy:  models.Author{Identity: "admin-1", Email: "admin@test.com"},
		CreatedAt:  createdAt.UTC(),
	}
	if _, err := f.db.Collection("messages").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test message: %v", err)
	}
	return m
}
