package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/noticeboard/internal/app/system/plaintext"
	"github.com/dalemusser/noticeboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DeliveryTarget says who a message is addressed to. It is either Broadcast
// or Individual.
type DeliveryTarget interface {
	messageType() models.MessageType
}

// Broadcast addresses every organizer active at send time and also
// publishes the content to the user-facing broadcast feed.
type Broadcast struct{}

// Individual addresses an explicit list of organizer ids (24-hex strings).
type Individual struct {
	IDs []string
}

func (Broadcast) messageType() models.MessageType  { return models.MessageBroadcast }
func (Individual) messageType() models.MessageType { return models.MessageIndividual }

// ParseTarget maps a request's type string to a DeliveryTarget.
// "broadcast" is a Broadcast (ids ignored); anything else is Individual.
func ParseTarget(typ string, ids []string) DeliveryTarget {
	if strings.TrimSpace(typ) == string(models.MessageBroadcast) {
		return Broadcast{}
	}
	return Individual{IDs: ids}
}

// SendInput is an admin send request.
type SendInput struct {
	Title  string
	Body   string
	Target DeliveryTarget
	Sender models.Author
}

// SendResult summarizes a created message.
type SendResult struct {
	ID              primitive.ObjectID `json:"id"`
	Type            models.MessageType `json:"type"`
	CreatedAt       time.Time          `json:"created_at"`
	RecipientsCount int                `json:"recipients_count"`
}

// SendMessage resolves the recipients of in.Target and persists the message.
// For a broadcast it then writes the BroadcastNotification copy. The two
// writes are not atomic: if the second fails the message stays in history and
// the error is returned.
func (s *Service) SendMessage(ctx context.Context, in SendInput) (SendResult, error) {
	if in.Target == nil {
		return SendResult{}, validationError("delivery target is required")
	}

	maxBody := models.MessageMaxBody
	if _, ok := in.Target.(Broadcast); ok {
		maxBody = models.BroadcastMaxBody
	}
	title, body, err := cleanContent(in.Title, in.Body, maxBody)
	if err != nil {
		return SendResult{}, err
	}

	recipients, err := s.resolveRecipients(ctx, in.Target)
	if err != nil {
		return SendResult{}, err
	}

	sendID := s.sendID()
	log := s.log.With(
		zap.String("send_id", sendID),
		zap.String("type", string(in.Target.messageType())),
		zap.Int("recipients", len(recipients)))

	msg := models.Message{
		ID:         primitive.NewObjectID(),
		Type:       in.Target.messageType(),
		Title:      title,
		Body:       body,
		Recipients: make([]models.MessageRecipient, 0, len(recipients)),
		CreatedBy:  in.Sender,
		CreatedAt:  s.now(),
	}
	for _, id := range recipients {
		msg.Recipients = append(msg.Recipients, models.MessageRecipient{OrganizerID: id})
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		log.Error("message write failed", zap.Error(err))
		return SendResult{}, storeError("create message", err)
	}

	if _, ok := in.Target.(Broadcast); ok {
		_, err := s.broadcasts.Create(ctx, models.BroadcastNotification{
			ID:        primitive.NewObjectID(),
			Title:     title,
			Body:      body,
			CreatedBy: in.Sender,
			CreatedAt: created.CreatedAt,
		})
		if err != nil {
			log.Error("broadcast notification write failed; message kept in history",
				zap.String("message_id", created.ID.Hex()),
				zap.Error(err))
			return SendResult{}, storeError("create broadcast notification", err)
		}
	}

	log.Info("message sent", zap.String("message_id", created.ID.Hex()))
	return SendResult{
		ID:              created.ID,
		Type:            created.Type,
		CreatedAt:       created.CreatedAt,
		RecipientsCount: len(created.Recipients),
	}, nil
}

func (s *Service) resolveRecipients(ctx context.Context, target DeliveryTarget) ([]primitive.ObjectID, error) {
	switch t := target.(type) {
	case Broadcast:
		ids, err := s.organizers.ListActiveIDs(ctx)
		if err != nil {
			return nil, storeError("list active organizers", err)
		}
		return ids, nil
	case Individual:
		ids := validRecipientIDs(t.IDs)
		if len(ids) == 0 {
			return nil, validationError("no valid recipient IDs")
		}
		return ids, nil
	default:
		return nil, validationError(fmt.Sprintf("unsupported delivery target %T", target))
	}
}

// validRecipientIDs keeps well-formed ids in first-seen order. Malformed
// entries and repeats are dropped.
func validRecipientIDs(raw []string) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(raw))
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(r))
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// cleanContent strips markup and enforces the length bounds.
func cleanContent(rawTitle, rawBody string, maxBody int) (string, string, error) {
	title := plaintext.Clean(rawTitle)
	body := plaintext.Clean(rawBody)

	if body == "" {
		return "", "", validationError("body is required")
	}
	if n := utf8.RuneCountInString(title); n > models.MessageMaxTitle {
		return "", "", validationError(fmt.Sprintf("title must be at most %d characters", models.MessageMaxTitle))
	}
	if n := utf8.RuneCountInString(body); n > maxBody {
		return "", "", validationError(fmt.Sprintf("body must be at most %d characters", maxBody))
	}
	return title, body, nil
}

// ReportKind classifies a user-submitted report.
type ReportKind string

const (
	ReportBug     ReportKind = "bug"
	ReportFeature ReportKind = "feature"
)

func (k ReportKind) titlePrefix() (string, bool) {
	switch k {
	case ReportBug:
		return "Bug report", true
	case ReportFeature:
		return "Feature request", true
	}
	return "", false
}

// SubmitReport records a bug report or feature request as an admin message.
// It has no recipients and shows up only in the message history.
func (s *Service) SubmitReport(ctx context.Context, kind ReportKind, rawTitle, rawBody string, sender models.Author) (SendResult, error) {
	prefix, ok := kind.titlePrefix()
	if !ok {
		return SendResult{}, validationError("kind must be bug or feature")
	}

	title := prefix
	if t := plaintext.Clean(rawTitle); t != "" {
		title = prefix + ": " + t
	}
	title, body, err := cleanContent(title, rawBody, models.MessageMaxBody)
	if err != nil {
		return SendResult{}, err
	}

	created, err := s.messages.Create(ctx, models.Message{
		ID:         primitive.NewObjectID(),
		Type:       models.MessageAdmin,
		Title:      title,
		Body:       body,
		Recipients: []models.MessageRecipient{},
		CreatedBy:  sender,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return SendResult{}, storeError("create report", err)
	}

	s.log.Info("report submitted",
		zap.String("kind", string(kind)),
		zap.String("message_id", created.ID.Hex()),
		zap.String("email", sender.Email))
	return SendResult{ID: created.ID, Type: created.Type, CreatedAt: created.CreatedAt}, nil
}
