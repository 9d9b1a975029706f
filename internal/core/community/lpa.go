package community

import (
	"sort"

	"github.com/agenthands/synapse/internal/core/model"
)

// LabelPropagationDetector groups neurons of a partner graph using the Label
// Propagation Algorithm. Each synapse row adds one unit of undirected weight
// between its pre- and postsynaptic partner.
type LabelPropagationDetector struct {
	MaxIterations int
	MinSize       int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
		MinSize:       2,
	}
}

func (d *LabelPropagationDetector) Detect(table model.SynapseTable) ([]model.Community, error) {
	if table.Len() == 0 {
		return nil, nil
	}

	adj := make(map[model.NeuronID]map[model.NeuronID]int)
	for _, s := range table.Rows {
		for _, id := range []model.NeuronID{s.PrePartnerID, s.PostPartnerID} {
			if adj[id] == nil {
				adj[id] = make(map[model.NeuronID]int)
			}
		}
		// autapses carry no grouping information
		if s.PrePartnerID == s.PostPartnerID {
			continue
		}
		adj[s.PrePartnerID][s.PostPartnerID]++
		adj[s.PostPartnerID][s.PrePartnerID]++
	}

	ids := make([]model.NeuronID, 0, len(adj))
	labels := make(map[model.NeuronID]model.NeuronID, len(adj))
	for id := range adj {
		ids = append(ids, id)
		labels[id] = id
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0
		for _, u := range ids {
			weights := make(map[model.NeuronID]int)
			best := 0
			for v, w := range adj[u] {
				weights[labels[v]] += w
				best = max(best, weights[labels[v]])
			}
			if best == 0 {
				continue
			}

			// ties go to the largest label so runs are reproducible
			var label model.NeuronID
			first := true
			for l, w := range weights {
				if w == best && (first || l > label) {
					label = l
					first = false
				}
			}
			if labels[u] != label {
				labels[u] = label
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	groups := make(map[model.NeuronID][]model.NeuronID)
	for _, id := range ids {
		groups[labels[id]] = append(groups[labels[id]], id)
	}

	var communities []model.Community
	for label, members := range groups {
		if len(members) < d.MinSize {
			continue
		}
		communities = append(communities, model.Community{
			Label:   label,
			Members: members,
			Weight:  internalWeight(table, labels, label),
		})
	}
	sort.Slice(communities, func(i, j int) bool {
		if len(communities[i].Members) != len(communities[j].Members) {
			return len(communities[i].Members) > len(communities[j].Members)
		}
		return communities[i].Label < communities[j].Label
	})
	return communities, nil
}

func internalWeight(table model.SynapseTable, labels map[model.NeuronID]model.NeuronID, label model.NeuronID) int {
	w := 0
	for _, s := range table.Rows {
		if labels[s.PrePartnerID] == label && labels[s.PostPartnerID] == label {
			w++
		}
	}
	return w
}
