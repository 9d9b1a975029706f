package connectors

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/core/model"
)

var ErrNoRealigner = errors.New("transform requested but no realigner configured")

// ConnectorSource is the skeleton annotation service.
type ConnectorSource interface {
	ConnectorDetails(ctx context.Context, skeleton model.NeuronID) ([]model.Connector, error)
	// NodeLocations returns raw coordinates in the same order as nodes.
	NodeLocations(ctx context.Context, nodes []model.NodeID) ([]model.Point, error)
}

// Realigner maps voxel coordinates from one imaging space into another.
type Realigner interface {
	Realign(points []model.Point) ([]model.Point, error)
	Target() string
}

type Fetcher struct {
	Source    ConnectorSource
	Realigner Realigner
	Logger    *zap.Logger
}

func NewFetcher(source ConnectorSource, realigner Realigner, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{Source: source, Realigner: realigner, Logger: logger}
}

// Fetch returns the input and output synapse coordinates of a skeleton.
// Output synapses are connectors the skeleton is presynaptic to; every other
// connector is an input. A side with no connectors is returned as nil.
func (f *Fetcher) Fetch(ctx context.Context, skeleton model.NeuronID, res model.Resolution, transform bool) (in, out *model.CoordinateTable, err error) {
	if err := res.Validate(); err != nil {
		return nil, nil, err
	}
	if transform && f.Realigner == nil {
		return nil, nil, ErrNoRealigner
	}

	details, err := f.Source.ConnectorDetails(ctx, skeleton)
	if err != nil {
		return nil, nil, fmt.Errorf("connector details for skeleton %d: %w", skeleton, err)
	}

	outputs, inputs := Partition(details, skeleton)
	f.Logger.Debug("partitioned connectors",
		zap.Int64("skeleton", int64(skeleton)),
		zap.Int("outputs", len(outputs)),
		zap.Int("inputs", len(inputs)),
	)

	if len(outputs) > 0 {
		out, err = f.coordinates(ctx, PostsynapticNodes(outputs), res, transform)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(inputs) > 0 {
		in, err = f.coordinates(ctx, PresynapticNodes(inputs), res, transform)
		if err != nil {
			return nil, nil, err
		}
	}
	return in, out, nil
}

func (f *Fetcher) coordinates(ctx context.Context, nodes []model.NodeID, res model.Resolution, transform bool) (*model.CoordinateTable, error) {
	table := &model.CoordinateTable{Space: model.SpaceVoxel, Points: []model.Point{}}
	if len(nodes) == 0 {
		return table, nil
	}

	raw, err := f.Source.NodeLocations(ctx, nodes)
	if err != nil {
		return nil, fmt.Errorf("node locations: %w", err)
	}
	if len(raw) != len(nodes) {
		return nil, fmt.Errorf("node locations: got %d points for %d nodes", len(raw), len(nodes))
	}

	points := make([]model.Point, len(raw))
	for i, p := range raw {
		points[i] = p.Div(res)
	}
	table.Points = points

	if !transform {
		return table, nil
	}
	realigned, err := f.Realigner.Realign(points)
	if err != nil {
		return nil, fmt.Errorf("realign to %s: %w", f.Realigner.Target(), err)
	}
	return &model.CoordinateTable{Space: f.Realigner.Target(), Points: realigned}, nil
}

// Partition splits connectors by whether skeleton is on their presynaptic side.
func Partition(details []model.Connector, skeleton model.NeuronID) (outputs, inputs []model.Connector) {
	for _, c := range details {
		if c.IsOutputOf(skeleton) {
			outputs = append(outputs, c)
		} else {
			inputs = append(inputs, c)
		}
	}
	return outputs, inputs
}

// PostsynapticNodes flattens the postsynaptic treenodes of all connectors,
// skipping unknown references.
func PostsynapticNodes(connectors []model.Connector) []model.NodeID {
	var nodes []model.NodeID
	for _, c := range connectors {
		for _, n := range c.PostsynapticNodes {
			if n != nil && *n != 0 {
				nodes = append(nodes, *n)
			}
		}
	}
	return nodes
}

func PresynapticNodes(connectors []model.Connector) []model.NodeID {
	var nodes []model.NodeID
	for _, c := range connectors {
		if c.PresynapticNode != nil {
			nodes = append(nodes, *c.PresynapticNode)
		}
	}
	return nodes
}
