package community

import (
	"sort"

	"github.com/agenthands/synapse/internal/core/model"
)

type CommunityDetector interface {
	Detect(table model.SynapseTable) ([]model.Community, error)
}

func NewDetector(algorithm string) CommunityDetector {
	if algorithm == "components" {
		return &ComponentDetector{MinSize: 2}
	}
	return NewLabelPropagationDetector()
}

// ComponentDetector treats every connected component of the partner graph as
// one community.
type ComponentDetector struct {
	MinSize int
}

func (d *ComponentDetector) Detect(table model.SynapseTable) ([]model.Community, error) {
	adj := make(map[model.NeuronID][]model.NeuronID)
	for _, s := range table.Rows {
		adj[s.PrePartnerID] = append(adj[s.PrePartnerID], s.PostPartnerID)
		adj[s.PostPartnerID] = append(adj[s.PostPartnerID], s.PrePartnerID)
	}

	ids := make([]model.NeuronID, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	labels := make(map[model.NeuronID]model.NeuronID, len(ids))
	var communities []model.Community
	for _, id := range ids {
		if _, seen := labels[id]; seen {
			continue
		}
		var members []model.NeuronID
		stack := []model.NeuronID{id}
		labels[id] = id
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, u)
			for _, v := range adj[u] {
				if _, seen := labels[v]; !seen {
					labels[v] = id
					stack = append(stack, v)
				}
			}
		}
		if len(members) < d.MinSize {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		communities = append(communities, model.Community{
			Label:   id,
			Members: members,
			Weight:  internalWeight(table, labels, id),
		})
	}
	return communities, nil
}
