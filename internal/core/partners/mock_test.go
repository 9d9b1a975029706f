package partners

import (
	"context"
	"sync"

	"github.com/agenthands/synapse/internal/core/model"
)

type MockQuerier struct {
	mu     sync.Mutex
	ByPost map[model.NeuronID]model.SynapseTable
	ByPre  map[model.NeuronID]model.SynapseTable
	Err    error
	FailOn model.NeuronID
	Calls  []string
}

func (m *MockQuerier) SynapsesByPost(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return m.lookup("post", id, m.ByPost)
}

func (m *MockQuerier) SynapsesByPre(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return m.lookup("pre", id, m.ByPre)
}

func (m *MockQuerier) lookup(kind string, id model.NeuronID, tables map[model.NeuronID]model.SynapseTable) (model.SynapseTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, kind)
	if m.Err != nil && (m.FailOn == 0 || m.FailOn == id) {
		return model.SynapseTable{}, m.Err
	}
	return tables[id], nil
}

// outputs builds synapses from neuron to each listed partner, one row per entry.
func outputs(neuron model.NeuronID, startID int64, partners ...model.NeuronID) model.SynapseTable {
	rows := make([]model.Synapse, len(partners))
	for i, p := range partners {
		rows[i] = model.Synapse{ID: startID + int64(i), PrePartnerID: neuron, PostPartnerID: p}
	}
	return model.SynapseTable{Rows: rows}
}

func inputs(neuron model.NeuronID, startID int64, partners ...model.NeuronID) model.SynapseTable {
	rows := make([]model.Synapse, len(partners))
	for i, p := range partners {
		rows[i] = model.Synapse{ID: startID + int64(i), PrePartnerID: p, PostPartnerID: neuron}
	}
	return model.SynapseTable{Rows: rows}
}
