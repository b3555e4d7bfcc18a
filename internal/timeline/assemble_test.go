package timeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, time.May, 26, 13, 0, 0, 0, time.UTC)

// fakeStore answers membership queries from a fixed activity set and
// records every call
type fakeStore struct {
	mu       sync.Mutex
	records  []models.Activity
	calls    [][]string
	pages    []repository.Page
	failWith error
	failOn   string // fail batches containing this actor id
}

func (f *fakeStore) query(ctx context.Context, actorIDs []string, page repository.Page) ([]models.Activity, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), actorIDs...))
	f.pages = append(f.pages, page)
	f.mu.Unlock()

	wanted := map[string]bool{}
	for _, id := range actorIDs {
		if id == f.failOn {
			return nil, f.failWith
		}
		wanted[id] = true
	}

	var out []models.Activity
	for _, r := range f.records {
		if wanted[r.ActorID] {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, Compare)
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func actor(i int) string { return fmt.Sprintf("user-%02d", i) }

func activityAt(id, actorID string, at time.Time) models.Activity {
	return models.Activity{ID: id, ActorID: actorID, CreatedAt: at, Actor: models.ActorIdentity{ID: actorID, DisplayName: actorID}}
}

func TestAssembleEmptyFollowing(t *testing.T) {
	store := &fakeStore{}
	out, stats, err := Assemble(context.Background(), nil, Options{BatchSize: 10, Limit: 20}, store.query)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Zero(t, stats.Batches)
	assert.Empty(t, store.calls, "no store calls for an empty graph")
}

func TestAssembleBatchesByMembershipLimit(t *testing.T) {
	store := &fakeStore{}
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = actor(i)
		store.records = append(store.records, activityAt(fmt.Sprintf("act-%02d", i), ids[i], base.Add(time.Duration(i)*time.Second)))
	}
	// the same activity reachable from two batches must appear once
	store.records = append(store.records, activityAt("act-24", actor(3), base.Add(24*time.Second)))

	out, stats, err := Assemble(context.Background(), ids, Options{BatchSize: 10, Limit: 5}, store.query)
	require.NoError(t, err)

	require.Len(t, store.calls, 3)
	assert.Equal(t, 3, stats.Batches)
	sizes := []int{}
	covered := map[string]bool{}
	for _, call := range store.calls {
		assert.LessOrEqual(t, len(call), 10)
		sizes = append(sizes, len(call))
		for _, id := range call {
			covered[id] = true
		}
	}
	assert.ElementsMatch(t, []int{10, 10, 5}, sizes)
	assert.Len(t, covered, 25, "every followee queried exactly once")

	require.Len(t, out, 5)
	assert.Equal(t, []string{"act-24", "act-23", "act-22", "act-21", "act-20"}, activityIDs(out))

	seen := map[string]bool{}
	for i, a := range out {
		assert.False(t, seen[a.ID], "duplicate %s", a.ID)
		seen[a.ID] = true
		if i > 0 {
			assert.False(t, a.CreatedAt.After(out[i-1].CreatedAt), "not sorted at %d", i)
		}
	}
}

func TestAssemblePerBatchLimitNeverBelowLimit(t *testing.T) {
	store := &fakeStore{}
	_, _, err := Assemble(context.Background(), []string{"a", "b"}, Options{BatchSize: 10, Limit: 30, PerBatch: 5}, store.query)
	require.NoError(t, err)
	require.Len(t, store.pages, 1)
	assert.Equal(t, 30, store.pages[0].Limit)

	store = &fakeStore{}
	_, _, err = Assemble(context.Background(), []string{"a"}, Options{BatchSize: 10, Limit: 3, PerBatch: 50}, store.query)
	require.NoError(t, err)
	assert.Equal(t, 50, store.pages[0].Limit)
}

func TestAssemblePassesCursorToEveryBatch(t *testing.T) {
	store := &fakeStore{}
	cursor := &repository.Cursor{CreatedAt: base, ID: "act-x"}
	ids := []string{"a", "b", "c"}

	_, _, err := Assemble(context.Background(), ids, Options{BatchSize: 2, Limit: 3, Before: cursor}, store.query)
	require.NoError(t, err)
	require.Len(t, store.pages, 2)
	for _, p := range store.pages {
		assert.Equal(t, cursor, p.Before)
	}
}

func TestAssembleFailsWholeCallOnBatchFailure(t *testing.T) {
	store := &fakeStore{
		failOn:   actor(12),
		failWith: apperrors.StorageUnavailable("query", errors.New("shard offline")),
	}
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = actor(i)
		store.records = append(store.records, activityAt(fmt.Sprintf("act-%02d", i), ids[i], base))
	}

	out, _, err := Assemble(context.Background(), ids, Options{BatchSize: 10, Limit: 10}, store.query)
	assert.Nil(t, out, "no partial feed")
	assert.ErrorIs(t, err, apperrors.ErrBatchPartialFailure)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable, "cause is kept")
}

func TestAssembleTieBreakByID(t *testing.T) {
	store := &fakeStore{records: []models.Activity{
		activityAt("z", "a", base),
		activityAt("m", "b", base),
		activityAt("b", "a", base),
		activityAt("newest", "b", base.Add(time.Second)),
	}}

	out, _, err := Assemble(context.Background(), []string{"a", "b"}, Options{BatchSize: 1, Limit: 3}, store.query)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "b", "m"}, activityIDs(out))
}

func TestPartition(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}, {"5"}}, partition(ids, 2))
	assert.Equal(t, [][]string{ids}, partition(ids, 10))
}

func activityIDs(records []models.Activity) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
