package dedupe

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/wevote/dedupe-cli/internal/politician"
)

// ReferenceCounts counts the dependent rows of every kind that point at
// weVoteID. Kinds are counted concurrently.
func ReferenceCounts(ctx context.Context, r politician.Reader, weVoteID string) (map[politician.RefKind]int64, error) {
	var (
		mu     sync.Mutex
		counts = make(map[politician.RefKind]int64)
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range politician.RefKinds() {
		g.Go(func() error {
			n, err := r.CountReferences(gctx, k, weVoteID)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[k] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "dedupe: reference counts for %s", weVoteID)
	}
	return counts, nil
}
