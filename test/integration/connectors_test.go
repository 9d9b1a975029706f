//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/synapse/internal/core/model"
)

func TestConnectorCoordinates(t *testing.T) {
	s, base := connect(t)
	ctx := context.Background()

	skid, other := model.NeuronID(base+1), model.NeuronID(base+2)
	node := func(n int64) *model.NodeID {
		id := model.NodeID(base + n)
		return &id
	}

	require.NoError(t, s.SaveTreenode(ctx, *node(10), skid, model.Point{X: 43, Y: 86, Z: 450}))
	require.NoError(t, s.SaveTreenode(ctx, *node(11), skid, model.Point{X: 86, Y: 43, Z: 900}))
	require.NoError(t, s.SaveTreenode(ctx, *node(20), other, model.Point{X: 4.3, Y: 4.3, Z: 45}))
	require.NoError(t, s.SaveTreenode(ctx, *node(21), other, model.Point{X: 8.6, Y: 8.6, Z: 90}))

	// skid -> other, twice
	require.NoError(t, s.SaveConnector(ctx, model.Connector{ID: base + 100, PresynapticNode: node(10), PostsynapticNodes: []*model.NodeID{node(20)}}))
	require.NoError(t, s.SaveConnector(ctx, model.Connector{ID: base + 101, PresynapticNode: node(11), PostsynapticNodes: []*model.NodeID{node(21)}}))
	// other -> skid
	require.NoError(t, s.SaveConnector(ctx, model.Connector{ID: base + 102, PresynapticNode: node(20), PostsynapticNodes: []*model.NodeID{node(11)}}))

	details, err := s.ConnectorDetails(ctx, skid)
	require.NoError(t, err)
	require.Len(t, details, 3)

	in, out, err := analyzer(t, s).ConnectorCoordinates(ctx, skid, model.DefaultResolution, false)
	require.NoError(t, err)

	require.NotNil(t, out)
	assert.Equal(t, model.SpaceVoxel, out.Space)
	require.Len(t, out.Points, 2)
	assert.InDelta(t, 1.0, out.Points[0].X, 1e-9)
	assert.InDelta(t, 2.0, out.Points[1].Z, 1e-9)

	require.NotNil(t, in)
	require.Len(t, in.Points, 1)
	assert.Equal(t, model.Point{X: 1, Y: 1, Z: 1}, in.Points[0])
}

func TestConnectorCoordinates_UnknownSkeleton(t *testing.T) {
	s, base := connect(t)

	in, out, err := analyzer(t, s).ConnectorCoordinates(context.Background(), model.NeuronID(base+999), model.DefaultResolution, true)
	require.NoError(t, err)
	assert.Nil(t, in)
	assert.Nil(t, out)
}
