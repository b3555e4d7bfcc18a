// Package notifications delivers per-recipient notifications for follows,
// likes and comments. Consumers poll; there is no push transport.
package notifications

import (
	"context"
	"fmt"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/metrics"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/telemetry"
	"go.uber.org/zap"
)

const (
	DefaultBulkChunk = 500
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// NotifyInput describes one notification
type NotifyInput struct {
	RecipientID string
	ActorID     string
	Kind        models.NotificationKind
	// TargetKind names the liked or commented entity in the default message
	TargetKind models.TargetKind
	Message    string
	LinkTo     *string
}

// Dispatcher creates and reads notifications
type Dispatcher struct {
	repo      repository.NotificationRepository
	profiles  *profiles.Resolver
	bulkChunk int
}

func NewDispatcher(repo repository.NotificationRepository, resolver *profiles.Resolver, bulkChunk int) *Dispatcher {
	if bulkChunk < 1 {
		bulkChunk = DefaultBulkChunk
	}
	return &Dispatcher{repo: repo, profiles: resolver, bulkChunk: bulkChunk}
}

// Notify persists an unread notification. Acting on your own content is not
// news: when recipient and actor match it returns (nil, nil).
func (d *Dispatcher) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if in.RecipientID == in.ActorID {
		metrics.Get().NotificationsSuppressed.WithLabelValues(string(in.Kind)).Inc()
		return nil, nil
	}
	if in.RecipientID == "" {
		return nil, apperrors.ValidationError("recipient_id", "recipient is required")
	}

	ctx, span := telemetry.GetBusinessEvents().TraceNotification(ctx, string(in.Kind), in.RecipientID)
	defer span.End()

	identity, err := d.profiles.Resolve(ctx, in.ActorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	message := in.Message
	if message == "" {
		message = Message(in.Kind, identity.DisplayName, in.TargetKind)
	}

	n := &models.Notification{
		RecipientID: in.RecipientID,
		Kind:        in.Kind,
		ActorID:     in.ActorID,
		Actor:       identity,
		Message:     message,
		LinkTo:      in.LinkTo,
		IsRead:      false,
	}
	if err := d.repo.CreateNotification(ctx, n); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.Get().NotificationsCreated.WithLabelValues(string(in.Kind)).Inc()
	logger.Log.Debug("Notification created",
		zap.String("notification_id", n.ID),
		zap.String("recipient_id", n.RecipientID),
		logger.WithActorID(n.ActorID),
		zap.String("kind", string(n.Kind)),
	)
	return n, nil
}

// ListFor returns a recipient's newest notifications, identities patched
func (d *Dispatcher) ListFor(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	list, err := d.repo.ListForRecipient(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Actor.Missing() {
			list[i].Actor = d.profiles.Patch(ctx, list[i].ActorID, list[i].Actor)
		}
	}
	return list, nil
}

func (d *Dispatcher) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return d.repo.CountUnread(ctx, userID)
}

// Get returns one notification
func (d *Dispatcher) Get(ctx context.Context, notificationID string) (*models.Notification, error) {
	return d.repo.GetNotification(ctx, notificationID)
}

// MarkRead is idempotent; NOT_FOUND only for ids that never existed
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID string) error {
	n, err := d.repo.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	_, err = d.repo.MarkRead(ctx, []string{notificationID})
	return err
}

// MarkAllRead flips every notification unread at call time, in chunks.
// Notifications created after the snapshot stay unread.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ids, err := d.repo.UnreadIDs(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total int64
	for start := 0; start < len(ids); start += d.bulkChunk {
		end := min(start+d.bulkChunk, len(ids))
		n, err := d.repo.MarkRead(ctx, ids[start:end])
		total += n
		if err != nil {
			return total, err
		}
	}

	logger.Log.Debug("Notifications marked read",
		logger.WithUserID(userID),
		zap.Int64("count", total),
	)
	return total, nil
}

// Message renders the default text for a notification kind
func Message(kind models.NotificationKind, actorName string, target models.TargetKind) string {
	if actorName == "" {
		actorName = "Someone"
	}
	switch kind {
	case models.NotificationFollow:
		return fmt.Sprintf("%s started following you", actorName)
	case models.NotificationLike:
		return fmt.Sprintf("%s liked your %s", actorName, noun(target))
	case models.NotificationComment:
		return fmt.Sprintf("%s commented on your %s", actorName, noun(target))
	}
	return fmt.Sprintf("%s interacted with you", actorName)
}

func noun(kind models.TargetKind) string {
	switch kind {
	case models.TargetRaceLog:
		return "race log"
	case models.TargetList:
		return "list"
	case models.TargetComment:
		return "comment"
	}
	return "post"
}

// LinkToUser, LinkToRaceLog and LinkToList build client routes
func LinkToUser(id string) *string    { return link("/users/" + id) }
func LinkToRaceLog(id string) *string { return link("/logs/" + id) }
func LinkToList(id string) *string    { return link("/lists/" + id) }

// LinkToTarget picks the route for a like or comment target
func LinkToTarget(kind models.TargetKind, id string) *string {
	switch kind {
	case models.TargetRaceLog:
		return LinkToRaceLog(id)
	case models.TargetList:
		return LinkToList(id)
	case models.TargetUser:
		return LinkToUser(id)
	}
	return nil
}

func link(s string) *string {
	return &s
}
