package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/noticeboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseTarget(t *testing.T) {
	ids := []string{"abc"}
	tests := []struct {
		typ  string
		want DeliveryTarget
	}{
		{"broadcast", Broadcast{}},
		{" broadcast ", Broadcast{}},
		{"individual", Individual{IDs: ids}},
		{"", Individual{IDs: ids}},
		{"everyone", Individual{IDs: ids}},
	}
	for _, tt := range tests {
		got := ParseTarget(tt.typ, ids)
		switch want := tt.want.(type) {
		case Broadcast:
			if _, ok := got.(Broadcast); !ok {
				t.Errorf("ParseTarget(%q): got %T, want Broadcast", tt.typ, got)
			}
		case Individual:
			ind, ok := got.(Individual)
			if !ok {
				t.Errorf("ParseTarget(%q): got %T, want Individual", tt.typ, got)
				continue
			}
			if len(ind.IDs) != len(want.IDs) {
				t.Errorf("ParseTarget(%q): ids not carried through", tt.typ)
			}
		}
	}
}

func TestSendMessage_Individual_DropsMalformedIDs(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	res, err := h.svc.SendMessage(ctx, SendInput{
		Body:   "Agenda attached",
		Target: Individual{IDs: []string{a.Hex(), "not-an-id", b.Hex()}},
		Sender: admin,
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if res.RecipientsCount != 2 {
		t.Errorf("RecipientsCount: got %d, want 2", res.RecipientsCount)
	}
	if res.Type != models.MessageIndividual {
		t.Errorf("Type: got %q, want %q", res.Type, models.MessageIndividual)
	}

	msg, err := h.messages.GetByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	for _, id := range []primitive.ObjectID{a, b} {
		r, ok := msg.Recipient(id)
		if !ok {
			t.Fatalf("recipient %s missing", id.Hex())
		}
		if r.Read || r.ReadAt != nil {
			t.Errorf("recipient %s should start unread", id.Hex())
		}
	}
	if len(h.broadcasts.rows) != 0 {
		t.Error("individual send must not write a broadcast notification")
	}
}

func TestSendMessage_Individual_CollapsesDuplicates(t *testing.T) {
	h := newHarness()
	a := primitive.NewObjectID()

	res, err := h.svc.SendMessage(context.Background(), SendInput{
		Body:   "Twice",
		Target: Individual{IDs: []string{a.Hex(), a.Hex(), " " + a.Hex() + " "}},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if res.RecipientsCount != 1 {
		t.Errorf("RecipientsCount: got %d, want 1", res.RecipientsCount)
	}
}

func TestSendMessage_Individual_NoValidIDs(t *testing.T) {
	for _, ids := range [][]string{{"not-an-id"}, nil, {}} {
		h := newHarness()
		_, err := h.svc.SendMessage(context.Background(), SendInput{
			Body:   "Hello",
			Target: Individual{IDs: ids},
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("ids %v: got %v, want ErrValidation", ids, err)
			continue
		}
		if !strings.Contains(err.Error(), "no valid recipient IDs") {
			t.Errorf("ids %v: unexpected message %q", ids, err.Error())
		}
		if len(h.messages.rows) != 0 {
			t.Errorf("ids %v: nothing should be written", ids)
		}
	}
}

func TestSendMessage_Validation(t *testing.T) {
	valid := []string{primitive.NewObjectID().Hex()}
	tests := []struct {
		name string
		in   SendInput
	}{
		{"empty body", SendInput{Body: "", Target: Individual{IDs: valid}}},
		{"whitespace body", SendInput{Body: "  \n ", Target: Individual{IDs: valid}}},
		{"markup-only body", SendInput{Body: "<p> </p>", Target: Individual{IDs: valid}}},
		{"long title", SendInput{Title: strings.Repeat("t", models.MessageMaxTitle+1), Body: "x", Target: Individual{IDs: valid}}},
		{"long individual body", SendInput{Body: strings.Repeat("b", models.MessageMaxBody+1), Target: Individual{IDs: valid}}},
		{"long broadcast body", SendInput{Body: strings.Repeat("b", models.BroadcastMaxBody+1), Target: Broadcast{}}},
		{"no target", SendInput{Body: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.organizers.add("org-1", models.OrganizerActive)
			_, err := h.svc.SendMessage(context.Background(), tt.in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
			if len(h.messages.rows) != 0 || len(h.broadcasts.rows) != 0 {
				t.Error("nothing should be written on validation failure")
			}
		})
	}
}

func TestSendMessage_LengthBoundsCountCharacters(t *testing.T) {
	h := newHarness()
	h.organizers.add("org-1", models.OrganizerActive)

	// Multi-byte runes at exactly the limit are accepted.
	_, err := h.svc.SendMessage(context.Background(), SendInput{
		Title:  strings.Repeat("é", models.MessageMaxTitle),
		Body:   strings.Repeat("ü", models.BroadcastMaxBody),
		Target: Broadcast{},
	})
	if err != nil {
		t.Fatalf("SendMessage at the limit failed: %v", err)
	}

	// An individual message may be longer than a broadcast.
	_, err = h.svc.SendMessage(context.Background(), SendInput{
		Body:   strings.Repeat("b", models.BroadcastMaxBody+1),
		Target: Individual{IDs: []string{primitive.NewObjectID().Hex()}},
	})
	if err != nil {
		t.Fatalf("long individual body rejected: %v", err)
	}
}

func TestSendMessage_StripsMarkup(t *testing.T) {
	h := newHarness()
	res, err := h.svc.SendMessage(context.Background(), SendInput{
		Title:  "<b>Hi</b>",
		Body:   " <em>Meeting</em> at 3 ",
		Target: Individual{IDs: []string{primitive.NewObjectID().Hex()}},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	msg, _ := h.messages.GetByID(context.Background(), res.ID)
	if msg.Title != "Hi" {
		t.Errorf("Title: got %q, want %q", msg.Title, "Hi")
	}
	if msg.Body != "Meeting at 3" {
		t.Errorf("Body: got %q, want %q", msg.Body, "Meeting at 3")
	}
}

func TestSendMessage_Broadcast(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	a := h.organizers.add("org-a", models.OrganizerActive)
	b := h.organizers.add("org-b", models.OrganizerActive)
	h.organizers.add("org-c", models.OrganizerDisabled)

	res, err := h.svc.SendMessage(ctx, SendInput{
		Title:  "Heads up",
		Body:   "Maintenance at 10pm",
		Target: ParseTarget("broadcast", []string{primitive.NewObjectID().Hex()}),
		Sender: admin,
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if res.Type != models.MessageBroadcast {
		t.Errorf("Type: got %q, want %q", res.Type, models.MessageBroadcast)
	}
	if res.RecipientsCount != 2 {
		t.Errorf("RecipientsCount: got %d, want 2 (active organizers only)", res.RecipientsCount)
	}

	msg, _ := h.messages.GetByID(ctx, res.ID)
	for _, id := range []primitive.ObjectID{a.ID, b.ID} {
		if _, ok := msg.Recipient(id); !ok {
			t.Errorf("active organizer %s missing", id.Hex())
		}
	}

	if len(h.broadcasts.rows) != 1 {
		t.Fatalf("broadcasts: got %d, want 1", len(h.broadcasts.rows))
	}
	bn := h.broadcasts.rows[0]
	if bn.Title != msg.Title || bn.Body != msg.Body || bn.CreatedBy != msg.CreatedBy {
		t.Errorf("broadcast copy differs from message: %+v vs %+v", bn, msg)
	}
	if !bn.CreatedAt.Equal(res.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", bn.CreatedAt, res.CreatedAt)
	}
	if h.receipts.count() != 0 {
		t.Error("no receipts may be created at send time")
	}
}

func TestSendMessage_Broadcast_NoActiveOrganizers(t *testing.T) {
	h := newHarness()
	res, err := h.svc.SendMessage(context.Background(), SendInput{Body: "Anyone?", Target: Broadcast{}})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if res.RecipientsCount != 0 {
		t.Errorf("RecipientsCount: got %d, want 0", res.RecipientsCount)
	}
	if len(h.broadcasts.rows) != 1 {
		t.Error("feed entry should still be written")
	}
}

func TestSendMessage_Broadcast_FeedWriteFails(t *testing.T) {
	h := newHarness()
	h.organizers.add("org-a", models.OrganizerActive)
	h.broadcasts.createErr = errors.New("disk full")

	_, err := h.svc.SendMessage(context.Background(), SendInput{Body: "Maintenance", Target: Broadcast{}})
	if !errors.Is(err, ErrStore) {
		t.Fatalf("got %v, want ErrStore", err)
	}
	if len(h.messages.rows) != 1 {
		t.Errorf("message must stay in history: got %d messages", len(h.messages.rows))
	}
	if len(h.broadcasts.rows) != 0 {
		t.Error("no feed entry expected")
	}
}

func TestSendMessage_MessageWriteFails(t *testing.T) {
	h := newHarness()
	h.messages.createErr = errors.New("connection reset")

	_, err := h.svc.SendMessage(context.Background(), SendInput{Body: "Maintenance", Target: Broadcast{}})
	if !errors.Is(err, ErrStore) {
		t.Fatalf("got %v, want ErrStore", err)
	}
	if len(h.broadcasts.rows) != 0 {
		t.Error("feed entry must not be written when the message write fails")
	}
}

func TestSubmitReport(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	reporter := models.Author{Identity: "user-9", Email: "u9@test.com"}

	res, err := h.svc.SubmitReport(ctx, ReportBug, "Save button", "Nothing happens on click", reporter)
	if err != nil {
		t.Fatalf("SubmitReport failed: %v", err)
	}
	if res.Type != models.MessageAdmin || res.RecipientsCount != 0 {
		t.Errorf("got type=%q recipients=%d, want admin with none", res.Type, res.RecipientsCount)
	}
	msg, _ := h.messages.GetByID(ctx, res.ID)
	if msg.Title != "Bug report: Save button" {
		t.Errorf("Title: got %q", msg.Title)
	}
	if msg.CreatedBy != reporter {
		t.Errorf("CreatedBy: got %+v", msg.CreatedBy)
	}

	res, err = h.svc.SubmitReport(ctx, ReportFeature, "", "Dark mode", reporter)
	if err != nil {
		t.Fatalf("SubmitReport(feature) failed: %v", err)
	}
	msg, _ = h.messages.GetByID(ctx, res.ID)
	if msg.Title != "Feature request" {
		t.Errorf("Title: got %q, want %q", msg.Title, "Feature request")
	}

	page, err := h.svc.ListMessageHistory(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListMessageHistory failed: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("reports should appear in history: total %d", page.Total)
	}
	if len(h.broadcasts.rows) != 0 {
		t.Error("reports must not reach the broadcast feed")
	}
}

func TestSubmitReport_Validation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if _, err := h.svc.SubmitReport(ctx, ReportKind("praise"), "", "Nice", admin); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown kind: got %v, want ErrValidation", err)
	}
	if _, err := h.svc.SubmitReport(ctx, ReportBug, "t", "  ", admin); !errors.Is(err, ErrValidation) {
		t.Errorf("empty body: got %v, want ErrValidation", err)
	}
	if _, err := h.svc.SubmitReport(ctx, ReportBug, strings.Repeat("x", models.MessageMaxTitle), "body", admin); !errors.Is(err, ErrValidation) {
		t.Errorf("prefixed title over limit: got %v, want ErrValidation", err)
	}
}
