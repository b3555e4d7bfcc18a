package actions

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shaygp/boxd/internal/activity"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/pipeline"
	"github.com/shaygp/boxd/internal/telemetry"
)

const (
	MaxRating      = 5.0
	MaxTitleLength = 120
)

// LogInput is a race the actor watched
type LogInput struct {
	Race   models.RaceMetadata `json:"race"`
	Rating float64             `json:"rating"`
	Review *string             `json:"review,omitempty"`
}

func (in *LogInput) validate() error {
	if strings.TrimSpace(in.Race.RaceName) == "" {
		return apperrors.ValidationError("race.race_name", "race name is required")
	}
	if in.Race.Season <= 0 {
		return apperrors.ValidationError("race.season", "season is required")
	}
	if in.Rating < 0 || in.Rating > MaxRating {
		return apperrors.ValidationError("rating", "rating must be between 0 and 5")
	}
	return nil
}

// ListInput is a new list
type ListInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LogRace stores a race log and records a log activity, or a review
// activity when review text is present
func (s *Service) LogRace(ctx context.Context, actorID string, in LogInput) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionLogRace, actorID, "")
	defer span.End()

	run := pipeline.Start(ActionLogRace, logger.WithActorID(actorID))
	res := &Result{Action: ActionLogRace}

	if err := s.requireActor(ctx, actorID); err != nil {
		return fail(span, run, err)
	}
	if err := in.validate(); err != nil {
		return fail(span, run, err)
	}

	var review *string
	if in.Review != nil {
		if trimmed := strings.TrimSpace(*in.Review); trimmed != "" {
			review = &trimmed
		}
	}

	log := &models.RaceLog{UserID: actorID, Race: in.Race, Rating: in.Rating, Review: review}
	if err := run.Relation(func() error { return s.content.CreateRaceLog(ctx, log) }); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	res.RaceLog = log
	run.Skip(pipeline.StepCounters)

	kind := models.ActivityLog
	if review != nil {
		kind = models.ActivityReview
	}
	race := in.Race
	if err := run.Effect(pipeline.StepActivity, func() error {
		var err error
		res.Activity, err = s.activity.Append(ctx, activity.AppendInput{
			ActorID:    actorID,
			Kind:       kind,
			TargetID:   log.ID,
			TargetKind: models.TargetRaceLog,
			Content:    review,
			Race:       &race,
		})
		return err
	}); err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}

// CreateList stores a list and records a list activity
func (s *Service) CreateList(ctx context.Context, actorID string, in ListInput) (*Result, error) {
	ctx, span := s.events.TraceAction(ctx, ActionCreateList, actorID, "")
	defer span.End()

	run := pipeline.Start(ActionCreateList, logger.WithActorID(actorID))
	res := &Result{Action: ActionCreateList}

	if err := s.requireActor(ctx, actorID); err != nil {
		return fail(span, run, err)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fail(span, run, apperrors.ValidationError("title", "title is required"))
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fail(span, run, apperrors.ValidationError("title", "title is too long"))
	}

	list := &models.List{UserID: actorID, Title: title, Description: strings.TrimSpace(in.Description)}
	if err := run.Relation(func() error { return s.content.CreateList(ctx, list) }); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	res.List = list
	run.Skip(pipeline.StepCounters)

	if err := run.Effect(pipeline.StepActivity, func() error {
		var err error
		res.Activity, err = s.activity.Append(ctx, activity.AppendInput{
			ActorID:    actorID,
			Kind:       models.ActivityList,
			TargetID:   list.ID,
			TargetKind: models.TargetList,
			Content:    &title,
		})
		return err
	}); err != nil {
		return finish(span, run, res, err)
	}

	run.Done()
	return finish(span, run, res, nil)
}
