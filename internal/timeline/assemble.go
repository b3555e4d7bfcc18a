package timeline

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"

	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
	"golang.org/x/sync/errgroup"
)

// BatchQuery fetches the newest activities of at most BatchSize actors
type BatchQuery func(ctx context.Context, actorIDs []string, page repository.Page) ([]models.Activity, error)

// Options control one fan-out
type Options struct {
	// BatchSize is K, the most actor ids one membership query may carry
	BatchSize int
	// Limit is the number of records returned
	Limit int
	// PerBatch is how many rows each batch fetches; raised to Limit if lower
	PerBatch int
	Before   *repository.Cursor
}

// Stats describes the work an assembly did
type Stats struct {
	Batches int
	Fetched int
}

// Assemble merges the activity of many actors into one page. Actors are
// split into batches of BatchSize, each batch is queried concurrently, and
// the union is de-duplicated, sorted by (created_at desc, id asc) and cut to
// Limit. Every batch must succeed; a single failure fails the whole call with
// BATCH_PARTIAL_FAILURE rather than returning a silently thinner feed.
func Assemble(ctx context.Context, actorIDs []string, opts Options, query BatchQuery) ([]models.Activity, Stats, error) {
	if len(actorIDs) == 0 || opts.Limit <= 0 {
		return []models.Activity{}, Stats{}, nil
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = repository.DefaultMembershipLimit
	}
	perBatch := max(opts.PerBatch, opts.Limit)
	page := repository.Page{Limit: perBatch, Before: opts.Before}

	batches := partition(actorIDs, opts.BatchSize)
	results := make([][]models.Activity, len(batches))

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			records, err := query(gctx, batch, page)
			if err != nil {
				failed.Add(1)
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{Batches: len(batches)}, apperrors.BatchPartialFailure(int(failed.Load()), len(batches), err)
	}

	merged := merge(results)
	stats := Stats{Batches: len(batches), Fetched: len(merged)}
	if len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}
	return merged, stats, nil
}

// partition splits ids into consecutive chunks of at most size
func partition(ids []string, size int) [][]string {
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// merge concatenates batch results, drops duplicate ids and sorts
func merge(results [][]models.Activity) []models.Activity {
	total := 0
	for _, r := range results {
		total += len(r)
	}

	seen := make(map[string]struct{}, total)
	merged := make([]models.Activity, 0, total)
	for _, r := range results {
		for _, a := range r {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}
	}

	slices.SortFunc(merged, Compare)
	return merged
}

// Compare orders activities newest first, ties broken by ascending id
func Compare(a, b models.Activity) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
