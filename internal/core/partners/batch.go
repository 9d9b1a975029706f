package partners

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/synapse/internal/core/model"
)

// BuildBatches runs Build for each batch with at most concurrency batches in
// flight. Results are returned in batch order. The first failure cancels the
// remaining batches and is returned.
//
// The querier must be safe for concurrent use when concurrency > 1.
func (b *Builder) BuildBatches(ctx context.Context, batches [][]model.NeuronID, dir model.Direction, threshold, concurrency int) ([]model.SynapseTable, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]model.SynapseTable, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := b.Build(gctx, batch, dir, threshold)
			if err != nil {
				return err
			}
			results[i] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Batches splits ids into consecutive chunks of at most size elements.
func Batches(ids []model.NeuronID, size int) [][]model.NeuronID {
	if size < 1 || len(ids) <= size {
		if len(ids) == 0 {
			return nil
		}
		return [][]model.NeuronID{ids}
	}
	var out [][]model.NeuronID
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}
