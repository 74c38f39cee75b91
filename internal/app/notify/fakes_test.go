package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	messagestore "github.com/dalemusser/noticeboard/internal/app/store/messages"
	organizerstore "github.com/dalemusser/noticeboard/internal/app/store/organizers"
	"github.com/dalemusser/noticeboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// In-memory stand-ins for the Mongo stores. They mirror the stores'
// observable behavior closely enough for service tests.

type fakeBroadcasts struct {
	mu        sync.Mutex
	rows      []models.BroadcastNotification
	createErr error
	lastLimit int64
}

func (f *fakeBroadcasts) Create(_ context.Context, b models.BroadcastNotification) (models.BroadcastNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.BroadcastNotification{}, f.createErr
	}
	f.rows = append(f.rows, b)
	return b, nil
}

func (f *fakeBroadcasts) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.rows {
		if b.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBroadcasts) ListRecent(_ context.Context, limit int64) ([]models.BroadcastNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	out := append([]models.BroadcastNotification(nil), f.rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBroadcasts) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func (f *fakeBroadcasts) IDs(context.Context) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]primitive.ObjectID, 0, len(f.rows))
	for _, b := range f.rows {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func (f *fakeBroadcasts) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.rows {
		if b.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type receiptKey struct {
	notificationID primitive.ObjectID
	userID         string
}

type fakeReceipts struct {
	mu         sync.Mutex
	rows       map[receiptKey]time.Time
	created    map[receiptKey]time.Time
	countCalls int
	bulkErr    error
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{rows: map[receiptKey]time.Time{}, created: map[receiptKey]time.Time{}}
}

func (f *fakeReceipts) markLocked(id primitive.ObjectID, userID string, at time.Time) bool {
	k := receiptKey{id, userID}
	if _, ok := f.rows[k]; ok {
		return false
	}
	f.rows[k] = at
	f.created[k] = at
	return true
}

func (f *fakeReceipts) MarkRead(_ context.Context, id primitive.ObjectID, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markLocked(id, userID, at)
	return nil
}

func (f *fakeReceipts) MarkManyRead(_ context.Context, ids []primitive.ObjectID, userID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkErr != nil {
		return 0, f.bulkErr
	}
	var n int64
	for _, id := range ids {
		if f.markLocked(id, userID, at) {
			n++
		}
	}
	return n, nil
}

func (f *fakeReceipts) CountRead(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	var n int64
	for k := range f.rows {
		if k.userID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeReceipts) ReadNotificationIDs(_ context.Context, userID string, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []primitive.ObjectID
	for _, id := range ids {
		if _, ok := f.rows[receiptKey{id, userID}]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeReceipts) DeleteByNotification(_ context.Context, id primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.rows {
		if k.notificationID == id {
			delete(f.rows, k)
			delete(f.created, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeReceipts) DeleteOrphans(_ context.Context, live []primitive.ObjectID, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep := map[primitive.ObjectID]bool{}
	for _, id := range live {
		keep[id] = true
	}
	var n int64
	for k := range f.rows {
		if !keep[k.notificationID] && f.created[k].Before(before) {
			delete(f.rows, k)
			delete(f.created, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeReceipts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeMessages struct {
	mu        sync.Mutex
	rows      []models.Message
	createErr error
	markCalls int
}

func cloneMessage(m models.Message) models.Message {
	m.Recipients = append([]models.MessageRecipient{}, m.Recipients...)
	return m
}

func (f *fakeMessages) Create(_ context.Context, m models.Message) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.Message{}, f.createErr
	}
	f.rows = append(f.rows, cloneMessage(m))
	return m, nil
}

func (f *fakeMessages) GetByID(_ context.Context, id primitive.ObjectID) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			return cloneMessage(m), nil
		}
	}
	return models.Message{}, messagestore.ErrNotFound
}

func (f *fakeMessages) newestFirst() []models.Message {
	out := make([]models.Message, 0, len(f.rows))
	for _, m := range f.rows {
		out = append(out, cloneMessage(m))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeMessages) ListForOrganizer(_ context.Context, orgID primitive.ObjectID, limit int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for _, m := range f.newestFirst() {
		if r, ok := m.Recipient(orgID); ok {
			m.Recipients = []models.MessageRecipient{r}
			out = append(out, m)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkRecipientRead(_ context.Context, mid, orgID primitive.ObjectID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	for i := range f.rows {
		if f.rows[i].ID != mid {
			continue
		}
		for j := range f.rows[i].Recipients {
			r := &f.rows[i].Recipients[j]
			if r.OrganizerID == orgID && !r.Read {
				r.Read = true
				r.ReadAt = &at
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeMessages) CountUnreadFor(_ context.Context, orgID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.rows {
		if r, ok := m.Recipient(orgID); ok && !r.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) History(_ context.Context, skip, limit int64) ([]messagestore.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.newestFirst()
	out := []messagestore.Summary{}
	for i := skip; i < int64(len(all)) && int64(len(out)) < limit; i++ {
		m := all[i]
		out = append(out, messagestore.Summary{
			ID:              m.ID,
			Type:            m.Type,
			Title:           m.Title,
			Body:            m.Body,
			CreatedBy:       m.CreatedBy,
			CreatedAt:       m.CreatedAt,
			RecipientsCount: len(m.Recipients),
			ReadCount:       m.ReadCount(),
		})
	}
	return out, nil
}

func (f *fakeMessages) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func (f *fakeMessages) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.rows {
		if m.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeOrganizers struct {
	orgs []models.Organizer
}

func (f *fakeOrganizers) add(identityID, status string) models.Organizer {
	o := models.Organizer{ID: primitive.NewObjectID(), IdentityID: identityID, Name: identityID, Status: status}
	f.orgs = append(f.orgs, o)
	return o
}

func (f *fakeOrganizers) ListActiveIDs(context.Context) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, o := range f.orgs {
		if o.Status == models.OrganizerActive {
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

func (f *fakeOrganizers) GetByIdentity(_ context.Context, identityID string) (models.Organizer, error) {
	for _, o := range f.orgs {
		if o.IdentityID == identityID {
			return o, nil
		}
	}
	return models.Organizer{}, organizerstore.ErrNotFound
}

type harness struct {
	svc        *Service
	broadcasts *fakeBroadcasts
	receipts   *fakeReceipts
	messages   *fakeMessages
	organizers *fakeOrganizers

	clockMu sync.Mutex
	clock   time.Time
}

// newHarness returns a Service over empty fakes with a clock that advances
// one second per call.
func newHarness() *harness {
	h := &harness{
		broadcasts: &fakeBroadcasts{},
		receipts:   newFakeReceipts(),
		messages:   &fakeMessages{},
		organizers: &fakeOrganizers{},
		clock:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	h.svc = New(Stores{
		Broadcasts: h.broadcasts,
		Receipts:   h.receipts,
		Messages:   h.messages,
		Organizers: h.organizers,
	}, Config{}, zap.NewNop())
	h.svc.now = func() time.Time {
		h.clockMu.Lock()
		defer h.clockMu.Unlock()
		h.clock = h.clock.Add(time.Second)
		return h.clock
	}
	return h
}

var admin = models.Author{Identity: "admin-1", Email: "admin@test.com"}
