package pipeline

import (
	"github.com/shaygp/boxd/internal/metrics"
	"go.uber.org/zap"
)

const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeFailed   = "failed"
)

// Run walks one action through its stages
type Run struct {
	action string
	stage  Stage
	fields []zap.Field
}

// Start begins an action in the Pending stage. fields are attached to any
// degraded-outcome log line.
func Start(action string, fields ...zap.Field) *Run {
	return &Run{action: action, stage: Pending, fields: fields}
}

func (r *Run) Action() string {
	return r.action
}

func (r *Run) Stage() Stage {
	return r.stage
}

// Advance records a stage completed by a collaborator. Stages never move back.
func (r *Run) Advance(to Stage) {
	if to > r.stage {
		r.stage = to
	}
}

// Relation runs the primary write. Its error is returned unchanged: nothing
// has been written, so the action simply failed.
func (r *Run) Relation(fn func() error) error {
	if err := fn(); err != nil {
		r.record(outcomeFailed)
		return err
	}
	r.Advance(RelationWritten)
	return nil
}

// Effect runs a side effect. On failure the sequence stops and a *StepError
// carrying the stage reached so far is returned.
func (r *Run) Effect(step Step, fn func() error) error {
	if err := fn(); err != nil {
		r.record(outcomeDegraded)
		return Degrade(r.action, r.stage, step, err, r.fields...)
	}
	r.Advance(step.completes())
	return nil
}

// Skip passes over a step the action has no use for
func (r *Run) Skip(step Step) {
	r.Advance(step.completes())
}

// Adopt takes over an error returned by a collaborator that ran part of the
// sequence itself. Degraded outcomes keep their reached stage; anything else
// means the action failed outright.
func (r *Run) Adopt(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := AsStepError(err); ok {
		r.Advance(se.Reached)
		r.record(outcomeDegraded)
		return err
	}
	r.record(outcomeFailed)
	return err
}

// Reject records an action refused before any write
func (r *Run) Reject(err error) error {
	r.record(outcomeFailed)
	return err
}

// Done marks the sequence complete
func (r *Run) Done() {
	r.stage = Done
	r.record(outcomeOK)
}

func (r *Run) record(outcome string) {
	metrics.Get().ActionsTotal.WithLabelValues(r.action, outcome).Inc()
}
