package source

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/progcdc/internal/program"
)

// FetchAll fetches the state of every id with at most PoolSize queries in
// flight. States are in the order of ids.
//
// A program that disappears between listing and fetching is not an error: its
// id is returned in vanished so the caller can classify it from the archive.
// Any other failure cancels the remaining fetches and fails the whole batch.
func (f *Fetcher) FetchAll(ctx context.Context, ids []program.ProgramID) (states []program.MaterializedState, vanished []program.ProgramID, err error) {
	return fetchBounded(ctx, ids, f.poolSize, f.FetchState)
}

type fetchFunc func(ctx context.Context, id program.ProgramID) (program.MaterializedState, error)

func fetchBounded(ctx context.Context, ids []program.ProgramID, limit int, fetch fetchFunc) ([]program.MaterializedState, []program.ProgramID, error) {
	results := make([]program.MaterializedState, len(ids))
	found := make([]bool, len(ids))

	var mu sync.Mutex
	vanished := []program.ProgramID{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, id := range ids {
		g.Go(func() error {
			state, err := fetch(gctx, id)
			if program.IsNotFound(err) {
				mu.Lock()
				vanished = append(vanished, id)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = state
			found[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	states := make([]program.MaterializedState, 0, len(ids))
	for i, ok := range found {
		if ok {
			states = append(states, results[i])
		}
	}
	sort.Slice(vanished, func(i, j int) bool { return vanished[i] < vanished[j] })
	return states, vanished, nil
}
