package connectors

import (
	"context"
	"fmt"

	"github.com/agenthands/synapse/internal/core/model"
)

type MockSource struct {
	Details     []model.Connector
	Locations   map[model.NodeID]model.Point
	DetailsErr  error
	LocationErr error

	LocationCalls [][]model.NodeID
}

func (m *MockSource) ConnectorDetails(ctx context.Context, skeleton model.NeuronID) ([]model.Connector, error) {
	if m.DetailsErr != nil {
		return nil, m.DetailsErr
	}
	return m.Details, nil
}

func (m *MockSource) NodeLocations(ctx context.Context, nodes []model.NodeID) ([]model.Point, error) {
	m.LocationCalls = append(m.LocationCalls, nodes)
	if m.LocationErr != nil {
		return nil, m.LocationErr
	}
	points := make([]model.Point, len(nodes))
	for i, n := range nodes {
		p, ok := m.Locations[n]
		if !ok {
			return nil, fmt.Errorf("unknown node %d", n)
		}
		points[i] = p
	}
	return points, nil
}

// MockRealigner shifts every point by Offset.
type MockRealigner struct {
	Offset model.Point
	Err    error
	Calls  int
}

func (m *MockRealigner) Realign(points []model.Point) ([]model.Point, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.Point, len(points))
	for i, p := range points {
		out[i] = model.Point{X: p.X + m.Offset.X, Y: p.Y + m.Offset.Y, Z: p.Z + m.Offset.Z}
	}
	return out, nil
}

func (m *MockRealigner) Target() string {
	return "fanc4"
}

func skid(id model.NeuronID) *model.NeuronID { return &id }

func node(id model.NodeID) *model.NodeID { return &id }
