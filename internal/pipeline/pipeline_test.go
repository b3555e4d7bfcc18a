package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHappyPath(t *testing.T) {
	run := Start("follow")
	assert.Equal(t, Pending, run.Stage())

	require.NoError(t, run.Relation(func() error { return nil }))
	assert.Equal(t, RelationWritten, run.Stage())

	require.NoError(t, run.Effect(StepCounters, func() error { return nil }))
	assert.Equal(t, CounterApplied, run.Stage())

	require.NoError(t, run.Effect(StepActivity, func() error { return nil }))
	require.NoError(t, run.Effect(StepNotify, func() error { return nil }))
	assert.Equal(t, Notified, run.Stage())

	run.Done()
	assert.Equal(t, Done, run.Stage())
}

func TestRelationFailureIsNotDegraded(t *testing.T) {
	boom := errors.New("boom")
	run := Start("like")

	err := run.Relation(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsDegraded(err))
	assert.Equal(t, Pending, run.Stage())
}

func TestEffectFailureStopsAtReachedStage(t *testing.T) {
	boom := errors.New("store down")
	run := Start("comment")
	require.NoError(t, run.Relation(func() error { return nil }))
	require.NoError(t, run.Effect(StepCounters, func() error { return nil }))

	err := run.Effect(StepNotify, func() error { return boom })
	require.Error(t, err)
	assert.True(t, IsDegraded(err))
	assert.ErrorIs(t, err, boom)

	se, ok := AsStepError(err)
	require.True(t, ok)
	assert.Equal(t, "comment", se.Action)
	assert.Equal(t, CounterApplied, se.Reached)
	assert.Equal(t, StepNotify, se.Step)
	assert.Equal(t, CounterApplied, run.Stage())
}

func TestAdoptKeepsCollaboratorStage(t *testing.T) {
	inner := Degrade("follow", RelationWritten, StepCounters, errors.New("counter"))
	run := Start("follow")

	err := run.Adopt(fmt.Errorf("graph: %w", inner))
	assert.True(t, IsDegraded(err))
	assert.Equal(t, RelationWritten, run.Stage())

	assert.NoError(t, run.Adopt(nil))
}

func TestAdvanceNeverMovesBack(t *testing.T) {
	run := Start("follow")
	run.Advance(ActivityAppended)
	run.Advance(RelationWritten)
	assert.Equal(t, ActivityAppended, run.Stage())
}

func TestStageNames(t *testing.T) {
	assert.Equal(t, "relation_written", RelationWritten.String())
	text, err := Notified.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "notified", string(text))
}

func TestSkipAdvancesPastUnusedStep(t *testing.T) {
	run := Start("comment")
	require.NoError(t, run.Relation(func() error { return nil }))
	require.NoError(t, run.Effect(StepCounters, func() error { return nil }))
	run.Skip(StepActivity)
	assert.Equal(t, ActivityAppended, run.Stage())

	err := run.Effect(StepNotify, func() error { return errors.New("down") })
	se, ok := AsStepError(err)
	require.True(t, ok)
	assert.Equal(t, ActivityAppended, se.Reached)
}
