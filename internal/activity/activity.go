// Package activity is the append-only ledger of user actions that feeds are
// built from. Records are immutable and ordered by (created_at desc, id asc).
package activity

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/metrics"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// AppendInput describes one action to record
type AppendInput struct {
	ActorID    string
	Kind       models.ActivityKind
	TargetID   string
	TargetKind models.TargetKind
	Content    *string
	Race       *models.RaceMetadata
}

// Ledger appends and queries activities
type Ledger struct {
	repo     repository.ActivityRepository
	profiles *profiles.Resolver
	now      func() time.Time
}

func NewLedger(repo repository.ActivityRepository, resolver *profiles.Resolver) *Ledger {
	return &Ledger{
		repo:     repo,
		profiles: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Append resolves the actor once, stamps the identity and persists the record
func (l *Ledger) Append(ctx context.Context, in AppendInput) (*models.Activity, error) {
	if in.ActorID == "" {
		return nil, apperrors.Unauthenticated("")
	}
	if !in.Kind.Valid() {
		return nil, apperrors.ValidationError("kind", "unknown activity kind "+string(in.Kind))
	}
	if in.TargetID == "" {
		return nil, apperrors.ValidationError("target_id", "target is required")
	}
	switch in.TargetKind {
	case models.TargetRaceLog, models.TargetList, models.TargetUser:
	default:
		return nil, apperrors.ValidationError("target_kind", "activities cannot target "+string(in.TargetKind))
	}

	identity, err := l.profiles.Resolve(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}

	var content *string
	if in.Content != nil {
		if trimmed := strings.TrimSpace(*in.Content); trimmed != "" {
			content = &trimmed
		}
	}

	record := &models.Activity{
		ActorID:    in.ActorID,
		Actor:      identity,
		Kind:       in.Kind,
		TargetID:   in.TargetID,
		TargetKind: in.TargetKind,
		Content:    content,
		Race:       in.Race,
		CreatedAt:  l.now(),
	}
	if err := l.repo.CreateActivity(ctx, record); err != nil {
		return nil, err
	}

	metrics.Get().ActivitiesAppended.WithLabelValues(string(in.Kind)).Inc()
	logger.Log.Debug("Activity appended",
		logger.WithActivityID(record.ID),
		logger.WithActorID(in.ActorID),
		zap.String("kind", string(in.Kind)),
	)
	return record, nil
}

// QueryGlobal returns the newest activities from everyone
func (l *Ledger) QueryGlobal(ctx context.Context, limit int) ([]models.Activity, error) {
	return l.QueryGlobalPage(ctx, repository.Page{Limit: limit})
}

func (l *Ledger) QueryGlobalPage(ctx context.Context, page repository.Page) ([]models.Activity, error) {
	page.Limit = ClampLimit(page.Limit)
	records, err := l.repo.QueryGlobal(ctx, page)
	if err != nil {
		return nil, err
	}
	l.Enrich(ctx, records)
	return records, nil
}

// QueryByActor returns one actor's newest activities
func (l *Ledger) QueryByActor(ctx context.Context, actorID string, limit int) ([]models.Activity, error) {
	return l.QueryByActorPage(ctx, actorID, repository.Page{Limit: limit})
}

func (l *Ledger) QueryByActorPage(ctx context.Context, actorID string, page repository.Page) ([]models.Activity, error) {
	page.Limit = ClampLimit(page.Limit)
	records, err := l.repo.QueryByActor(ctx, actorID, page)
	if err != nil {
		return nil, err
	}
	l.Enrich(ctx, records)
	return records, nil
}

// QueryByActors is the membership query feeds fan out over. The set must not
// exceed MembershipLimit. Results are not enriched.
func (l *Ledger) QueryByActors(ctx context.Context, actorIDs []string, page repository.Page) ([]models.Activity, error) {
	return l.repo.QueryByActors(ctx, actorIDs, page)
}

// MembershipLimit is the largest set QueryByActors accepts
func (l *Ledger) MembershipLimit() int {
	return l.repo.MembershipLimit()
}

// Enrich patches records in place whose stamped identity is missing
func (l *Ledger) Enrich(ctx context.Context, records []models.Activity) {
	for i := range records {
		l.EnrichOne(ctx, &records[i])
	}
}

// EnrichOne patches a single record. Safe to call from several goroutines on
// distinct records.
func (l *Ledger) EnrichOne(ctx context.Context, record *models.Activity) {
	if !record.Actor.Missing() {
		return
	}
	patched := l.profiles.Patch(ctx, record.ActorID, record.Actor)
	if patched.Missing() {
		metrics.Get().FeedEnrichmentFailures.WithLabelValues("activity").Inc()
		return
	}
	record.Actor = patched
	metrics.Get().FeedEnrichmentPatches.WithLabelValues("activity").Inc()
}

// ClampLimit keeps page sizes within [1, MaxLimit]
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}
