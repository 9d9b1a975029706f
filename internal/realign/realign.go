// Package realign maps voxel coordinates between versions of an imaging
// dataset. Implementations are deterministic and never modify their input.
package realign

import (
	"errors"
	"fmt"
	"math"

	"github.com/agenthands/synapse/internal/core/model"
)

var ErrNonFinite = errors.New("realignment produced a non-finite coordinate")

// Identity keeps coordinates unchanged but relabels them as Space.
type Identity struct {
	Space string
}

func (i Identity) Realign(points []model.Point) ([]model.Point, error) {
	return append([]model.Point(nil), points...), nil
}

func (i Identity) Target() string {
	return i.Space
}

// Affine applies p' = M·[x y z 1] with M stored row-major as 3 rows of 4.
type Affine struct {
	Space  string
	Matrix [3][4]float64
}

func (a Affine) Realign(points []model.Point) ([]model.Point, error) {
	out := make([]model.Point, len(points))
	for i, p := range points {
		v := [4]float64{p.X, p.Y, p.Z, 1}
		var r [3]float64
		for row := range a.Matrix {
			for col, m := range a.Matrix[row] {
				r[row] += m * v[col]
			}
			if math.IsNaN(r[row]) || math.IsInf(r[row], 0) {
				return nil, fmt.Errorf("%w: point %d", ErrNonFinite, i)
			}
		}
		out[i] = model.Point{X: r[0], Y: r[1], Z: r[2]}
	}
	return out, nil
}

func (a Affine) Target() string {
	return a.Space
}
