package partners

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/core/model"
)

// SynapseQuerier is the synapse-materialization service.
type SynapseQuerier interface {
	// SynapsesByPost returns every synapse whose postsynaptic partner is id.
	SynapsesByPost(ctx context.Context, id model.NeuronID) (model.SynapseTable, error)
	// SynapsesByPre returns every synapse whose presynaptic partner is id.
	SynapsesByPre(ctx context.Context, id model.NeuronID) (model.SynapseTable, error)
}

type Builder struct {
	Client SynapseQuerier
	Logger *zap.Logger
}

func NewBuilder(client SynapseQuerier, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Client: client, Logger: logger}
}

// Build queries each neuron in order and keeps the synapses whose partner
// occurs at least threshold times within that neuron's own result. Retained
// rows are concatenated across neurons without deduplication.
func (b *Builder) Build(ctx context.Context, ids []model.NeuronID, dir model.Direction, threshold int) (model.SynapseTable, error) {
	if !dir.Valid() {
		return model.SynapseTable{}, fmt.Errorf("%w: got %q", model.ErrInvalidDirection, dir)
	}

	result := model.SynapseTable{Rows: []model.Synapse{}}
	for _, id := range ids {
		kept, err := b.neuron(ctx, id, dir, threshold)
		if err != nil {
			return model.SynapseTable{}, err
		}
		result = result.Append(kept)
	}
	return result, nil
}

func (b *Builder) neuron(ctx context.Context, id model.NeuronID, dir model.Direction, threshold int) (model.SynapseTable, error) {
	var (
		table model.SynapseTable
		err   error
	)
	if dir == model.Pre {
		table, err = b.Client.SynapsesByPost(ctx, id)
	} else {
		table, err = b.Client.SynapsesByPre(ctx, id)
	}
	if err != nil {
		return model.SynapseTable{}, fmt.Errorf("synapse query for neuron %d: %w", id, err)
	}

	counts := table.PartnerCounts(dir)
	kept := table.Filter(func(s model.Synapse) bool {
		return counts[dir.PartnerOf(s)] > threshold-1
	})

	b.Logger.Debug("thresholded partners",
		zap.Int64("neuron", int64(id)),
		zap.String("direction", string(dir)),
		zap.Int("synapses", table.Len()),
		zap.Int("kept", kept.Len()),
	)
	return kept, nil
}

// PartnerCounts summarises Build's result as one entry per retained partner,
// ordered by count descending then partner ID ascending.
func (b *Builder) PartnerCounts(ctx context.Context, ids []model.NeuronID, dir model.Direction, threshold int) ([]model.PartnerCount, error) {
	table, err := b.Build(ctx, ids, dir, threshold)
	if err != nil {
		return nil, err
	}
	return Summarize(table, dir), nil
}

func Summarize(table model.SynapseTable, dir model.Direction) []model.PartnerCount {
	counts := table.PartnerCounts(dir)
	out := make([]model.PartnerCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, model.PartnerCount{PartnerID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].PartnerID < out[j].PartnerID
	})
	return out
}
