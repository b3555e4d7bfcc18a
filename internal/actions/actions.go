// Package actions runs the user-facing social actions: follow, like, comment,
// logging a race and publishing a list. Each action writes its primary
// relation, then applies counters, appends an activity and notifies, in that
// order, through a pipeline.Run.
package actions

import (
	"context"

	"github.com/shaygp/boxd/internal/activity"
	"github.com/shaygp/boxd/internal/counters"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/graph"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/notifications"
	"github.com/shaygp/boxd/internal/pipeline"
	"github.com/shaygp/boxd/internal/profiles"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

const (
	ActionFollow        = graph.ActionFollow
	ActionUnfollow      = graph.ActionUnfollow
	ActionLike          = "like"
	ActionUnlike        = "unlike"
	ActionComment       = "comment"
	ActionDeleteComment = "delete_comment"
	ActionLogRace       = "log_race"
	ActionCreateList    = "create_list"
)

// Target is the entity a like or comment points at
type Target struct {
	ID   string
	Kind models.TargetKind
}

// Result reports what an action wrote and how far it got. When the action
// returns a degraded error the Result is still populated up to Stage.
type Result struct {
	Action       string               `json:"action"`
	Stage        pipeline.Stage       `json:"stage"`
	Follow       *models.Follow       `json:"follow,omitempty"`
	Like         *models.Like         `json:"like,omitempty"`
	Comment      *models.Comment      `json:"comment,omitempty"`
	RaceLog      *models.RaceLog      `json:"race_log,omitempty"`
	List         *models.List         `json:"list,omitempty"`
	Activity     *models.Activity     `json:"activity,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// Deps are the collaborators an action service needs
type Deps struct {
	Graph         *graph.Graph
	Counters      *counters.Ledger
	Activities    *activity.Ledger
	Notifications *notifications.Dispatcher
	Profiles      *profiles.Resolver
	Likes         repository.LikeRepository
	Comments      repository.CommentRepository
	Content       repository.ContentRepository
}

// Service runs actions
type Service struct {
	graph    *graph.Graph
	counters *counters.Ledger
	activity *activity.Ledger
	notifier *notifications.Dispatcher
	profiles *profiles.Resolver
	likes    repository.LikeRepository
	comments repository.CommentRepository
	content  repository.ContentRepository
	events   *telemetry.BusinessEvents
}

func New(d Deps) *Service {
	return &Service{
		graph:    d.Graph,
		counters: d.Counters,
		activity: d.Activities,
		notifier: d.Notifications,
		profiles: d.Profiles,
		likes:    d.Likes,
		comments: d.Comments,
		content:  d.Content,
		events:   telemetry.GetBusinessEvents(),
	}
}

// owned describes a like/comment target once it has been looked up
type owned struct {
	counter counters.Owner
	ownerID string
	link    *string
}

// lookupTarget checks the target exists and finds who should be notified
func (s *Service) lookupTarget(ctx context.Context, t Target) (*owned, error) {
	if t.ID == "" {
		return nil, apperrors.ValidationError("target_id", "target is required")
	}
	counter, err := counters.OwnerOf(t.Kind, t.ID)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case models.TargetRaceLog:
		log, err := s.content.GetRaceLog(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		return &owned{counter: counter, ownerID: log.UserID, link: notifications.LinkToRaceLog(log.ID)}, nil
	case models.TargetList:
		list, err := s.content.GetList(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		return &owned{counter: counter, ownerID: list.UserID, link: notifications.LinkToList(list.ID)}, nil
	case models.TargetComment:
		c, err := s.comments.GetComment(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		// comments have no page of their own; link to what they sit under
		return &owned{counter: counter, ownerID: c.ActorID, link: notifications.LinkToTarget(c.TargetKind, c.TargetID)}, nil
	}
	return nil, apperrors.ValidationError("target_kind", "cannot react to "+string(t.Kind))
}

// requireActor rejects anonymous calls and actors without a profile
func (s *Service) requireActor(ctx context.Context, actorID string) error {
	if actorID == "" {
		return apperrors.Unauthenticated("")
	}
	_, err := s.profiles.Resolve(ctx, actorID)
	return err
}

// finish stamps the reached stage and tags the span for degraded outcomes
func finish(span trace.Span, run *pipeline.Run, res *Result, err error) (*Result, error) {
	res.Stage = run.Stage()
	if se, ok := pipeline.AsStepError(err); ok {
		telemetry.RecordDegraded(span, string(se.Step), se.Err)
	}
	return res, err
}

// fail reports an action that wrote nothing
func fail(span trace.Span, run *pipeline.Run, err error) (*Result, error) {
	telemetry.RecordError(span, err)
	return nil, run.Reject(err)
}
