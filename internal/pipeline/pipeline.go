// Package pipeline tracks the stages of a social action.
//
// Every action runs validate, primary relation, counters, activity, notify in
// that order. Nothing is rolled back: once the relation is written, the first
// failing side effect stops the sequence and the caller gets a *StepError
// describing how far the action got. That outcome is a degraded success and
// is logged and counted for later reconciliation.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/shaygp/boxd/internal/logger"
	"github.com/shaygp/boxd/internal/metrics"
	"go.uber.org/zap"
)

// Stage is the last completed stage of an action
type Stage int

const (
	Pending Stage = iota
	RelationWritten
	CounterApplied
	ActivityAppended
	Notified
	Done
)

func (s Stage) String() string {
	switch s {
	case Pending:
		return "pending"
	case RelationWritten:
		return "relation_written"
	case CounterApplied:
		return "counter_applied"
	case ActivityAppended:
		return "activity_appended"
	case Notified:
		return "notified"
	case Done:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// MarshalText renders stages by name in JSON responses
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Step names a side effect that runs after the relation
type Step string

const (
	StepCounters Step = "counters"
	StepActivity Step = "activity"
	StepNotify   Step = "notify"
)

// completes returns the stage reached when step succeeds
func (s Step) completes() Stage {
	switch s {
	case StepCounters:
		return CounterApplied
	case StepActivity:
		return ActivityAppended
	case StepNotify:
		return Notified
	}
	return Pending
}

// StepError reports a side effect that failed after the primary relation
// was written. Reached is the last stage that did complete.
type StepError struct {
	Action  string
	Reached Stage
	Step    Step
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s step failed after %s: %v", e.Action, e.Step, e.Reached, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// AsStepError extracts a *StepError from err's chain
func AsStepError(err error) (*StepError, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsDegraded reports whether err is a degraded success: the primary
// relation exists but a later side effect did not happen.
func IsDegraded(err error) bool {
	_, ok := AsStepError(err)
	return ok
}

// Degrade records a failed side effect and returns the error to hand back
func Degrade(action string, reached Stage, step Step, err error, fields ...zap.Field) *StepError {
	metrics.Get().SideEffectFailuresTotal.WithLabelValues(action, string(step)).Inc()

	logFields := append([]zap.Field{
		zap.String("action", action),
		zap.String("step", string(step)),
		zap.Stringer("reached", reached),
		zap.Error(err),
	}, fields...)
	logger.Log.Warn("Side effect failed, action degraded", logFields...)

	return &StepError{Action: action, Reached: reached, Step: step, Err: err}
}
