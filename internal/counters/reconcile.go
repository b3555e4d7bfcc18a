package counters

import (
	"context"
	"slices"

	"github.com/shaygp/boxd/internal/logger"
	"go.uber.org/zap"
)

// Drift is a counter whose stored value disagrees with its edges
type Drift struct {
	Owner  Owner `json:"owner"`
	Field  Field `json:"field"`
	Stored int64 `json:"stored"`
	Actual int64 `json:"actual"`
}

// FollowCounter counts live follow edges
type FollowCounter interface {
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

type LikeCounter interface {
	CountLikes(ctx context.Context, targetID string) (int64, error)
}

type CommentCounter interface {
	CountComments(ctx context.Context, targetID string) (int64, error)
}

// Reconciler recomputes counters from the relations they mirror. Nothing
// schedules it; operators run it on demand.
type Reconciler struct {
	ledger   *Ledger
	follows  FollowCounter
	likes    LikeCounter
	comments CommentCounter
}

func NewReconciler(ledger *Ledger, follows FollowCounter, likes LikeCounter, comments CommentCounter) *Reconciler {
	return &Reconciler{ledger: ledger, follows: follows, likes: likes, comments: comments}
}

// Fields lists the counters an owner kind carries, in a stable order
func Fields(kind OwnerKind) []Field {
	t, ok := layout[kind]
	if !ok {
		return nil
	}
	fields := make([]Field, 0, len(t.columns))
	for f := range t.columns {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// Kinds lists every owner kind with counters
func Kinds() []OwnerKind {
	return []OwnerKind{OwnerUser, OwnerRaceLog, OwnerList, OwnerComment}
}

// actual counts the live edges behind one counter
func (r *Reconciler) actual(ctx context.Context, owner Owner, field Field) (int64, error) {
	switch field {
	case FollowersCount:
		return r.follows.CountFollowers(ctx, owner.ID)
	case FollowingCount:
		return r.follows.CountFollowing(ctx, owner.ID)
	case LikesCount:
		return r.likes.CountLikes(ctx, owner.ID)
	case CommentsCount:
		return r.comments.CountComments(ctx, owner.ID)
	}
	_, err := resolve(owner, field)
	return 0, err
}

// Check compares one owner's counters with their edges. With fix set, drifted
// counters are overwritten.
func (r *Reconciler) Check(ctx context.Context, owner Owner, fix bool) ([]Drift, error) {
	var drifts []Drift
	for _, field := range Fields(owner.Kind) {
		stored, err := r.ledger.Get(ctx, owner, field)
		if err != nil {
			return drifts, err
		}
		actual, err := r.actual(ctx, owner, field)
		if err != nil {
			return drifts, err
		}
		if stored == actual {
			continue
		}

		drifts = append(drifts, Drift{Owner: owner, Field: field, Stored: stored, Actual: actual})
		if !fix {
			continue
		}
		if err := r.ledger.Recount(ctx, owner, field, actual); err != nil {
			return drifts, err
		}
		logger.Log.Info("Counter recounted",
			zap.String("owner_kind", string(owner.Kind)),
			zap.String("owner_id", owner.ID),
			zap.String("field", string(field)),
			zap.Int64("stored", stored),
			zap.Int64("actual", actual),
		)
	}
	return drifts, nil
}

// CheckAll runs Check over every owner of kind
func (r *Reconciler) CheckAll(ctx context.Context, kind OwnerKind, fix bool) ([]Drift, int, error) {
	ids, err := r.ledger.Owners(ctx, kind)
	if err != nil {
		return nil, 0, err
	}

	var drifts []Drift
	for _, id := range ids {
		d, err := r.Check(ctx, Owner{Kind: kind, ID: id}, fix)
		drifts = append(drifts, d...)
		if err != nil {
			return drifts, len(ids), err
		}
	}
	return drifts, len(ids), nil
}
