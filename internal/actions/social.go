package actions

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shaygp/boxd/internal/activity"
	"github.com/shaygp/boxd/internal/counters"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/notifications"
	"github.com/shaygp/boxd/internal/pipeline"
	"github.com/shaygp/boxd/internal/telemetry"
)

const MaxCommentLength = 2000

// Follow makes actorID follow targetUserID
func (s *Service) Follow(ctx context.Context, actorID, targetUserID string) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionFollow, actorID, targetUserID)
	defer span.End()

	run := pipeline.Start(ActionFollow, logger.WithActorID(actorID), logger.WithTargetID(targetUserID))
	res := &Result{Action: ActionFollow}

	if err := s.requireActor(ctx, actorID); err != nil {
		return fail(span, run, err)
	}

	edge, err := s.graph.Follow(ctx, actorID, targetUserID)
	if edge == nil {
		return fail(span, run, err)
	}
	run.Advance(pipeline.RelationWritten)
	res.Follow = edge
	if err := run.Adopt(err); err != nil {
		return finish(span, run, res, err)
	}
	run.Advance(pipeline.CounterApplied)

	err = run.Effect(pipeline.StepActivity, func() error {
		var err error
		res.Activity, err = s.activity.Append(ctx, activity.AppendInput{
			ActorID:    actorID,
			Kind:       models.ActivityFollow,
			TargetID:   targetUserID,
			TargetKind: models.TargetUser,
		})
		return err
	})
	if err != nil {
		return finish(span, run, res, err)
	}

	err = run.Effect(pipeline.StepNotify, func() error {
		var err error
		res.Notification, err = s.notifier.Notify(ctx, notifications.NotifyInput{
			RecipientID: targetUserID,
			ActorID:     actorID,
			Kind:        models.NotificationFollow,
			LinkTo:      notifications.LinkToUser(actorID),
		})
		return err
	})
	if err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}

// Unfollow removes the edge and reverses the counters
func (s *Service) Unfollow(ctx context.Context, actorID, targetUserID string) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionUnfollow, actorID, targetUserID)
	defer span.End()

	run := pipeline.Start(ActionUnfollow, logger.WithActorID(actorID), logger.WithTargetID(targetUserID))
	res := &Result{Action: ActionUnfollow}

	err := s.graph.Unfollow(ctx, actorID, targetUserID)
	if err != nil && !pipeline.IsDegraded(err) {
		return fail(span, run, err)
	}
	run.Advance(pipeline.RelationWritten)
	if err := run.Adopt(err); err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}

// Like records actorID's like on a race log, list or comment
func (s *Service) Like(ctx context.Context, actorID string, target Target) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionLike, actorID, target.ID)
	defer span.End()

	run := pipeline.Start(ActionLike, logger.WithActorID(actorID), logger.WithTargetID(target.ID))
	res := &Result{Action: ActionLike}

	if err := s.requireActor(ctx, actorID); err != nil {
		return fail(span, run, err)
	}
	owner, err := s.lookupTarget(ctx, target)
	if err != nil {
		return fail(span, run, err)
	}

	like := &models.Like{ActorID: actorID, TargetID: target.ID, TargetKind: target.Kind}
	if err := run.Relation(func() error { return s.likes.CreateLike(ctx, like) }); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	res.Like = like

	if err := run.Effect(pipeline.StepCounters, func() error {
		return s.counters.Adjust(ctx, owner.counter, counters.LikesCount, 1)
	}); err != nil {
		return finish(span, run, res, err)
	}

	// comment likes stay out of the feed
	if target.Kind == models.TargetComment {
		run.Skip(pipeline.StepActivity)
	} else if err := run.Effect(pipeline.StepActivity, func() error {
		var err error
		res.Activity, err = s.activity.Append(ctx, activity.AppendInput{
			ActorID:    actorID,
			Kind:       models.ActivityLike,
			TargetID:   target.ID,
			TargetKind: target.Kind,
		})
		return err
	}); err != nil {
		return finish(span, run, res, err)
	}

	if err := run.Effect(pipeline.StepNotify, func() error {
		var err error
		res.Notification, err = s.notifier.Notify(ctx, notifications.NotifyInput{
			RecipientID: owner.ownerID,
			ActorID:     actorID,
			Kind:        models.NotificationLike,
			TargetKind:  target.Kind,
			LinkTo:      owner.link,
		})
		return err
	}); err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}

// Unlike removes actorID's like and reverses likesCount. The target must
// exist with the given kind.
func (s *Service) Unlike(ctx context.Context, actorID string, target Target) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionUnlike, actorID, target.ID)
	defer span.End()

	run := pipeline.Start(ActionUnlike, logger.WithActorID(actorID), logger.WithTargetID(target.ID))
	res := &Result{Action: ActionUnlike}

	if actorID == "" {
		return fail(span, run, apperrors.Unauthenticated(""))
	}
	owner, err := s.lookupTarget(ctx, target)
	if err != nil {
		return fail(span, run, err)
	}

	if err := run.Relation(func() error {
		removed, err := s.likes.DeleteLike(ctx, actorID, target.ID, target.Kind)
		if err != nil {
			return err
		}
		if !removed {
			return apperrors.NotLiked()
		}
		return nil
	}); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := run.Effect(pipeline.StepCounters, func() error {
		return s.counters.Adjust(ctx, owner.counter, counters.LikesCount, -1)
	}); err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}

// Comment adds a comment under a race log or list. Comments notify the
// target's owner but are not recorded as activities.
func (s *Service) Comment(ctx context.Context, actorID string, target Target, body string) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionComment, actorID, target.ID)
	defer span.End()

	run := pipeline.Start(ActionComment, logger.WithActorID(actorID), logger.WithTargetID(target.ID))
	res := &Result{Action: ActionComment}

	if err := s.requireActor(ctx, actorID); err != nil {
		return fail(span, run, err)
	}
	if target.Kind != models.TargetRaceLog && target.Kind != models.TargetList {
		return fail(span, run, apperrors.ValidationError("target_kind", "cannot comment on "+string(target.Kind)))
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return fail(span, run, apperrors.ValidationError("body", "comment cannot be empty"))
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return fail(span, run, apperrors.ValidationError("body", "comment is too long"))
	}
	owner, err := s.lookupTarget(ctx, target)
	if err != nil {
		return fail(span, run, err)
	}

	comment := &models.Comment{ActorID: actorID, TargetID: target.ID, TargetKind: target.Kind, Body: body}
	if err := run.Relation(func() error { return s.comments.CreateComment(ctx, comment) }); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	res.Comment = comment

	if err := run.Effect(pipeline.StepCounters, func() error {
		return s.counters.Adjust(ctx, owner.counter, counters.CommentsCount, 1)
	}); err != nil {
		return finish(span, run, res, err)
	}

	run.Skip(pipeline.StepActivity)

	if err := run.Effect(pipeline.StepNotify, func() error {
		var err error
		res.Notification, err = s.notifier.Notify(ctx, notifications.NotifyInput{
			RecipientID: owner.ownerID,
			ActorID:     actorID,
			Kind:        models.NotificationComment,
			TargetKind:  target.Kind,
			LinkTo:      owner.link,
		})
		return err
	}); err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID string) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionDeleteComment, actorID, commentID)
	defer span.End()

	run := pipeline.Start(ActionDeleteComment, logger.WithActorID(actorID), logger.WithTargetID(commentID))
	res := &Result{Action: ActionDeleteComment}

	if actorID == "" {
		return fail(span, run, apperrors.Unauthenticated(""))
	}
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return fail(span, run, err)
	}
	if comment.ActorID != actorID {
		return fail(span, run, apperrors.Forbidden("only the author can delete a comment"))
	}
	counter, err := counters.OwnerOf(comment.TargetKind, comment.TargetID)
	if err != nil {
		return fail(span, run, err)
	}

	if err := run.Relation(func() error {
		removed, err := s.comments.DeleteComment(ctx, commentID)
		if err != nil {
			return err
		}
		if !removed {
			return apperrors.NotFound("comment")
		}
		return nil
	}); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	res.Comment = comment

	if err := run.Effect(pipeline.StepCounters, func() error {
		return s.counters.Adjust(ctx, counter, counters.CommentsCount, -1)
	}); err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}
