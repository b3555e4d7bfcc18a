// Package counters owns the denormalized counts shown next to users, race
// logs, lists and comments. Counts only move by atomic store increments, or by
// Recount when an operator corrects drift.
package counters

import (
	"context"
	"fmt"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/metrics"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
)

// OwnerKind is the kind of row a counter lives on
type OwnerKind string

const (
	OwnerUser    OwnerKind = "user"
	OwnerRaceLog OwnerKind = "raceLog"
	OwnerList    OwnerKind = "list"
	OwnerComment OwnerKind = "comment"
)

// Owner identifies the row holding a counter
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

func User(id string) Owner    { return Owner{Kind: OwnerUser, ID: id} }
func RaceLog(id string) Owner { return Owner{Kind: OwnerRaceLog, ID: id} }
func List(id string) Owner    { return Owner{Kind: OwnerList, ID: id} }
func Comment(id string) Owner { return Owner{Kind: OwnerComment, ID: id} }

// OwnerOf maps a like/comment target to the row holding its counters
func OwnerOf(kind models.TargetKind, id string) (Owner, error) {
	switch kind {
	case models.TargetRaceLog:
		return RaceLog(id), nil
	case models.TargetList:
		return List(id), nil
	case models.TargetComment:
		return Comment(id), nil
	case models.TargetUser:
		return User(id), nil
	}
	return Owner{}, apperrors.ValidationError("target_kind", fmt.Sprintf("unknown target kind %q", kind))
}

// Field names a counter
type Field string

const (
	FollowersCount Field = "followersCount"
	FollowingCount Field = "followingCount"
	LikesCount     Field = "likesCount"
	CommentsCount  Field = "commentsCount"
)

type table struct {
	name    string
	key     string
	upsert  bool
	columns map[Field]string
	// owners is the table listing every owner, when counters are stored apart
	owners string
}

// layout is the whitelist of counter columns; nothing else reaches SQL
var layout = map[OwnerKind]table{
	OwnerUser: {
		name:   "user_stats",
		key:    "user_id",
		upsert: true,
		owners: "users",
		columns: map[Field]string{
			FollowersCount: "followers_count",
			FollowingCount: "following_count",
		},
	},
	OwnerRaceLog: {
		name: "race_logs",
		key:  "id",
		columns: map[Field]string{
			LikesCount:    "likes_count",
			CommentsCount: "comments_count",
		},
	},
	OwnerList: {
		name: "lists",
		key:  "id",
		columns: map[Field]string{
			LikesCount:    "likes_count",
			CommentsCount: "comments_count",
		},
	},
	OwnerComment: {
		name: "comments",
		key:  "id",
		columns: map[Field]string{
			LikesCount: "likes_count",
		},
	},
}

func resolve(owner Owner, field Field) (repository.CounterColumn, error) {
	t, ok := layout[owner.Kind]
	if !ok {
		return repository.CounterColumn{}, apperrors.ValidationError("owner", fmt.Sprintf("unknown counter owner %q", owner.Kind))
	}
	col, ok := t.columns[field]
	if !ok {
		return repository.CounterColumn{}, apperrors.ValidationError("field", fmt.Sprintf("%s has no %s counter", owner.Kind, field))
	}
	if owner.ID == "" {
		return repository.CounterColumn{}, apperrors.ValidationError("owner", "owner id is required")
	}
	return repository.CounterColumn{
		Table:     t.name,
		KeyColumn: t.key,
		ID:        owner.ID,
		Column:    col,
		Upsert:    t.upsert,
	}, nil
}

// Ledger adjusts and reads counters
type Ledger struct {
	repo repository.CounterRepository
}

func NewLedger(repo repository.CounterRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Adjust applies delta atomically. Values are not clamped at zero, so
// adjustments commute and a drifted count shows up instead of hiding.
func (l *Ledger) Adjust(ctx context.Context, owner Owner, field Field, delta int64) error {
	col, err := resolve(owner, field)
	if err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}
	if err := l.repo.Increment(ctx, col, delta); err != nil {
		return err
	}

	direction := "up"
	if delta < 0 {
		direction = "down"
	}
	metrics.Get().CounterAdjustmentsTotal.WithLabelValues(string(owner.Kind), string(field), direction).Inc()
	return nil
}

// Recount overwrites a counter with a value computed from the edges
func (l *Ledger) Recount(ctx context.Context, owner Owner, field Field, trueCount int64) error {
	col, err := resolve(owner, field)
	if err != nil {
		return err
	}
	return l.repo.Set(ctx, col, trueCount)
}

// Get reads one counter
func (l *Ledger) Get(ctx context.Context, owner Owner, field Field) (int64, error) {
	col, err := resolve(owner, field)
	if err != nil {
		return 0, err
	}
	return l.repo.Get(ctx, col)
}

// UserStats reads both follow counters for a user. Users nobody has touched
// yet read as zero.
func (l *Ledger) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	followers, err := l.Get(ctx, User(userID), FollowersCount)
	if err != nil {
		return nil, err
	}
	following, err := l.Get(ctx, User(userID), FollowingCount)
	if err != nil {
		return nil, err
	}
	return &models.UserStats{
		UserID:         userID,
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}

// Owners lists every row of kind that carries counters
func (l *Ledger) Owners(ctx context.Context, kind OwnerKind) ([]string, error) {
	t, ok := layout[kind]
	if !ok {
		return nil, apperrors.ValidationError("owner", fmt.Sprintf("unknown counter owner %q", kind))
	}
	if t.owners != "" {
		return l.repo.OwnerIDs(ctx, t.owners, "id")
	}
	return l.repo.OwnerIDs(ctx, t.name, t.key)
}
