package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/synapse/internal/core/model"
)

func TestLPA_DisconnectedComponents(t *testing.T) {
	// Graph: [1-2-3-1] (Triangle A) ... [4-5-6-4] (Triangle B)
	table := edges(
		[2]model.NeuronID{1, 2}, [2]model.NeuronID{2, 3}, [2]model.NeuronID{3, 1},
		[2]model.NeuronID{4, 5}, [2]model.NeuronID{5, 6}, [2]model.NeuronID{6, 4},
	)

	communities, err := NewLabelPropagationDetector().Detect(table)
	require.NoError(t, err)

	require.Len(t, communities, 2)
	for _, c := range communities {
		assert.Len(t, c.Members, 3)
		assert.Equal(t, 3, c.Weight)
	}
}

func TestLPA_BridgeNode(t *testing.T) {
	// Two triangles connected by edge 3-4. The bridge is weaker than the
	// intra-triangle edges, so 3 stays with {1,2} and 4 with {5,6}.
	table := edges(
		[2]model.NeuronID{1, 2}, [2]model.NeuronID{2, 3}, [2]model.NeuronID{3, 1},
		[2]model.NeuronID{3, 4},
		[2]model.NeuronID{4, 5}, [2]model.NeuronID{5, 6}, [2]model.NeuronID{6, 4},
	)

	communities, err := NewLabelPropagationDetector().Detect(table)
	require.NoError(t, err)

	require.Len(t, communities, 2)
	assert.ElementsMatch(t, []model.NeuronID{1, 2, 3}, communities[0].Members)
	assert.ElementsMatch(t, []model.NeuronID{4, 5, 6}, communities[1].Members)
}

func TestLPA_LargeClique(t *testing.T) {
	var pairs [][2]model.NeuronID
	for i := model.NeuronID(1); i <= 5; i++ {
		for j := i + 1; j <= 5; j++ {
			pairs = append(pairs, [2]model.NeuronID{i, j})
		}
	}

	communities, err := NewLabelPropagationDetector().Detect(edges(pairs...))
	require.NoError(t, err)

	require.Len(t, communities, 1)
	assert.Len(t, communities[0].Members, 5)
	assert.Equal(t, 10, communities[0].Weight)
}

func TestLPA_SynapseCountWeighsEdges(t *testing.T) {
	// 2 has one synapse with 1 and three with 3.
	table := edges(
		[2]model.NeuronID{1, 2},
		[2]model.NeuronID{2, 3}, [2]model.NeuronID{2, 3}, [2]model.NeuronID{3, 2},
		[2]model.NeuronID{1, 10}, [2]model.NeuronID{10, 1},
	)

	communities, err := NewLabelPropagationDetector().Detect(table)
	require.NoError(t, err)

	require.Len(t, communities, 2)
	assert.ElementsMatch(t, []model.NeuronID{2, 3}, communities[0].Members)
	assert.ElementsMatch(t, []model.NeuronID{1, 10}, communities[1].Members)
}

func TestLPA_Empty(t *testing.T) {
	communities, err := NewLabelPropagationDetector().Detect(model.SynapseTable{})
	assert.NoError(t, err)
	assert.Nil(t, communities)
}
