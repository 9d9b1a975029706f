package core

import (
	"context"
	"sync"

	"github.com/agenthands/synapse/internal/core/model"
)

type MockQuerier struct {
	mu     sync.Mutex
	ByPre  map[model.NeuronID]model.SynapseTable
	ByPost map[model.NeuronID]model.SynapseTable
	Err    error
	Calls  int
}

func (m *MockQuerier) SynapsesByPost(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return m.get(m.ByPost, id)
}

func (m *MockQuerier) SynapsesByPre(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return m.get(m.ByPre, id)
}

func (m *MockQuerier) get(tables map[model.NeuronID]model.SynapseTable, id model.NeuronID) (model.SynapseTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return model.SynapseTable{}, m.Err
	}
	return tables[id], nil
}

type MockSource struct {
	Details   []model.Connector
	Locations map[model.NodeID]model.Point
}

func (m *MockSource) ConnectorDetails(ctx context.Context, skeleton model.NeuronID) ([]model.Connector, error) {
	return m.Details, nil
}

func (m *MockSource) NodeLocations(ctx context.Context, nodes []model.NodeID) ([]model.Point, error) {
	out := make([]model.Point, len(nodes))
	for i, n := range nodes {
		out[i] = m.Locations[n]
	}
	return out, nil
}
