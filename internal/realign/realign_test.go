package realign

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core/model"
)

func TestIdentity(t *testing.T) {
	in := []model.Point{{X: 1, Y: 2, Z: 3}}
	out, err := Identity{Space: "fanc4"}.Realign(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out[0].X = 100
	assert.Equal(t, 1.0, in[0].X)
}

func TestAffine(t *testing.T) {
	a := Affine{
		Space: "fanc4",
		Matrix: [3][4]float64{
			{2, 0, 0, 10},
			{0, 1, 0, -5},
			{0, 0, 0.5, 0},
		},
	}

	out, err := a.Realign([]model.Point{{X: 1, Y: 2, Z: 4}, {}})
	require.NoError(t, err)
	assert.Equal(t, []model.Point{{X: 12, Y: -3, Z: 2}, {X: 10, Y: -5, Z: 0}}, out)
	assert.Equal(t, "fanc4", a.Target())
}

func TestAffine_NonFinite(t *testing.T) {
	a := Affine{Matrix: [3][4]float64{{math.Inf(1), 0, 0, 0}}}
	_, err := a.Realign([]model.Point{{X: 1}})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestNew(t *testing.T) {
	r, err := New(config.RealignConfig{})
	require.NoError(t, err)
	assert.Equal(t, Identity{Space: "fanc4"}, r)

	r, err = New(config.RealignConfig{
		Kind:   "affine",
		Target: "neuroglancer",
		Matrix: [][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "neuroglancer", r.Target())

	_, err = New(config.RealignConfig{Kind: "affine", Matrix: [][]float64{{1, 0, 0}}})
	assert.Error(t, err)

	_, err = New(config.RealignConfig{Kind: "elastix"})
	assert.Error(t, err)
}
